package commands

import (
	"errors"

	"github.com/vsariola/clipseq"
)

// teeSink sends everything to a live sink and a recording.
type teeSink struct {
	live clipseq.Sink
	rec  *clipseq.RecordingSink
}

func (t teeSink) NoteOn(pitch, velocity, channel int, at clipseq.Tick) error {
	t.rec.NoteOn(pitch, velocity, channel, at)
	return t.live.NoteOn(pitch, velocity, channel, at)
}

func (t teeSink) NoteOff(pitch, channel int, at clipseq.Tick) error {
	t.rec.NoteOff(pitch, channel, at)
	return t.live.NoteOff(pitch, channel, at)
}

func (t teeSink) ControlChange(controller, value, channel int, at clipseq.Tick) error {
	t.rec.ControlChange(controller, value, channel, at)
	return t.live.ControlChange(controller, value, channel, at)
}

func (t teeSink) FlushThrough(at clipseq.Tick) error { return t.live.FlushThrough(at) }

func (t teeSink) Tempo(bpm float64, at clipseq.Tick) error {
	t.rec.Tempo(bpm, at)
	if ts, ok := t.live.(clipseq.TempoSink); ok {
		return ts.Tempo(bpm, at)
	}
	return nil
}

// recordingTo wraps every sink made by f so that it also records into rec.
func recordingTo(f clipseq.SinkFactory, rec *clipseq.Recording) clipseq.SinkFactory {
	return func(inst *clipseq.Instrument) (clipseq.Sink, error) {
		live, err := f(inst)
		if err != nil {
			return nil, err
		}
		if live == nil {
			return nil, errors.New("sink factory returned no sink")
		}
		return teeSink{live: live, rec: &clipseq.RecordingSink{Recording: rec, Instrument: inst.ID}}, nil
	}
}
