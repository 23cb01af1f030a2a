package clipseq

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type (
	// Recording is a log of dispatched events together with the tempo map
	// they were played at.
	Recording struct {
		BPM    float64       `msgpack:"bpm"` // tempo at tick 0
		Tempo  []TempoChange `msgpack:"tempo,omitempty"`
		Events []Event       `msgpack:"events"`
	}

	TempoChange struct {
		At  Tick    `msgpack:"at"`
		BPM float64 `msgpack:"bpm"`
	}
)

var ErrNoMetricTicks = errors.New("only metric time formats are supported")

func (r *Recording) Append(e Event) { r.Events = append(r.Events, e) }

// SetTempo records a tempo change. Repeats of the current tempo are ignored,
// so several sinks sharing a recording do not duplicate the tempo map.
func (r *Recording) SetTempo(bpm float64, at Tick) {
	if len(r.Tempo) == 0 && (r.BPM == 0 || at <= 0) {
		r.BPM = bpm
		return
	}
	if r.TempoAt(at) == bpm {
		return
	}
	if n := len(r.Tempo); n > 0 && r.Tempo[n-1].At == at {
		r.Tempo[n-1].BPM = bpm
		return
	}
	r.Tempo = append(r.Tempo, TempoChange{At: at, BPM: bpm})
}

// TempoAt returns the tempo in effect at tick at.
func (r *Recording) TempoAt(at Tick) float64 {
	bpm := r.BPM
	for _, t := range r.Tempo {
		if t.At > at {
			break
		}
		bpm = t.BPM
	}
	return bpm
}

// Seconds converts a tick position to seconds since tick 0, following the
// tempo map.
func (r *Recording) Seconds(at Tick) float64 {
	var secs float64
	pos, bpm := Tick(0), r.BPM
	for _, t := range r.Tempo {
		if t.At >= at {
			break
		}
		secs += ticksToSeconds(t.At-pos, bpm)
		pos, bpm = t.At, t.BPM
	}
	return secs + ticksToSeconds(at-pos, bpm)
}

func ticksToSeconds(t Tick, bpm float64) float64 {
	if bpm <= 0 {
		return 0
	}
	return float64(t) * 60 / (bpm * TicksPerBeat)
}

// Length returns the tick of the last event.
func (r *Recording) Length() Tick {
	var l Tick
	for _, e := range r.Events {
		l = max(l, e.At)
	}
	return l
}

// Count returns how many events of kind the recording holds.
func (r *Recording) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Unreleased returns the note-ons that no later note-off on the same
// instrument, channel and pitch releases.
func (r *Recording) Unreleased() []Event {
	type key struct {
		inst  InstrumentID
		ch    int
		pitch int
	}
	open := map[key][]Event{}
	for _, e := range r.Events {
		k := key{e.Instrument, e.Channel, e.Pitch}
		switch e.Kind {
		case EventNoteOn:
			open[k] = append(open[k], e)
		case EventNoteOff:
			if s := open[k]; len(s) > 0 {
				open[k] = s[1:]
			}
		}
	}
	var ret []Event
	for _, s := range open {
		ret = append(ret, s...)
	}
	slices.SortFunc(ret, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	return ret
}

// WriteSMF writes the recording as a standard MIDI file with one track per
// channel, preceded by a tempo track.
func (r *Recording) WriteSMF(w io.Writer, beatsPerBar int) error {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerBeat)
	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(uint8(beatsPerBar), 4))
	bpm := r.BPM
	if bpm <= 0 {
		bpm = 120
	}
	tempo.Add(0, smf.MetaTempo(bpm))
	var last Tick
	for _, t := range r.Tempo {
		tempo.Add(uint32(t.At-last), smf.MetaTempo(t.BPM))
		last = t.At
	}
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("could not add tempo track: %w", err)
	}
	events := slices.Clone(r.Events)
	slices.SortStableFunc(events, func(a, b Event) int { return cmp.Compare(a.At, b.At) })
	var channels []int
	for _, e := range events {
		if !slices.Contains(channels, e.Channel) {
			channels = append(channels, e.Channel)
		}
	}
	slices.Sort(channels)
	for _, ch := range channels {
		var track smf.Track
		var last Tick
		for _, e := range events {
			if e.Channel != ch {
				continue
			}
			var msg midi.Message
			switch e.Kind {
			case EventNoteOn:
				msg = midi.NoteOn(uint8(ch), uint8(e.Pitch), uint8(e.Velocity))
			case EventNoteOff:
				msg = midi.NoteOff(uint8(ch), uint8(e.Pitch))
			default:
				msg = midi.ControlChange(uint8(ch), uint8(e.Controller), uint8(e.Value))
			}
			track.Add(uint32(e.At-last), msg)
			last = e.At
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return fmt.Errorf("could not add track for channel %d: %w", ch, err)
		}
	}
	_, err := s.WriteTo(w)
	return err
}

// ReadRecordingSMF reads a standard MIDI file written with a metric time
// format, rescaling its ticks to the engine resolution.
func ReadRecordingSMF(rd io.Reader) (*Recording, error) {
	s, err := smf.ReadFrom(rd)
	if err != nil {
		return nil, fmt.Errorf("could not read midi file: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrNoMetricTicks
	}
	res := float64(mt.Resolution())
	scale := func(abs uint64) Tick {
		return BeatsToTicks(float64(abs) / res)
	}
	rec := &Recording{}
	for _, track := range s.Tracks {
		var abs uint64
		for _, ev := range track {
			abs += uint64(ev.Delta)
			at := scale(abs)
			var bpm float64
			var ch, key, vel, cc, val uint8
			msg := midi.Message(ev.Message)
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				rec.SetTempo(bpm, at)
			case msg.GetNoteStart(&ch, &key, &vel):
				rec.Append(Event{At: at, Kind: EventNoteOn, Channel: int(ch), Pitch: int(key), Velocity: int(vel)})
			case msg.GetNoteEnd(&ch, &key):
				rec.Append(Event{At: at, Kind: EventNoteOff, Channel: int(ch), Pitch: int(key)})
			case msg.GetControlChange(&ch, &cc, &val):
				rec.Append(Event{At: at, Kind: EventControl, Channel: int(ch), Controller: int(cc), Value: int(val)})
			}
		}
	}
	slices.SortStableFunc(rec.Events, func(a, b Event) int {
		if a.At != b.At {
			return cmp.Compare(a.At, b.At)
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	if rec.BPM == 0 {
		rec.BPM = 120
	}
	return rec, nil
}
