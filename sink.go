package clipseq

type (
	// Sink is the boundary between the engine and the outside world. Events
	// are submitted in non-decreasing tick order per channel and must be
	// delivered in that order. Submitting never blocks; FlushThrough blocks
	// until every event at or before at has been delivered.
	Sink interface {
		NoteOn(pitch, velocity, channel int, at Tick) error
		NoteOff(pitch, channel int, at Tick) error
		ControlChange(controller, value, channel int, at Tick) error
		FlushThrough(at Tick) error
	}

	// TempoSink is implemented by sinks that want to know the tempo, e.g. to
	// write a tempo map.
	TempoSink interface {
		Tempo(bpm float64, at Tick) error
	}

	// SinkFactory returns the sink an instrument plays through. The engine
	// calls it once per instrument; a factory may return the same sink for
	// many instruments.
	SinkFactory func(inst *Instrument) (Sink, error)

	// NullSink discards everything.
	NullSink struct{}

	// RecordingSink appends every event it receives to a Recording.
	RecordingSink struct {
		Recording  *Recording
		Instrument InstrumentID
	}
)

func (NullSink) NoteOn(pitch, velocity, channel int, at Tick) error          { return nil }
func (NullSink) NoteOff(pitch, channel int, at Tick) error                   { return nil }
func (NullSink) ControlChange(controller, value, channel int, at Tick) error { return nil }
func (NullSink) FlushThrough(at Tick) error                                  { return nil }

// NullSinks is a SinkFactory returning NullSinks.
func NullSinks(*Instrument) (Sink, error) { return NullSink{}, nil }

func (s *RecordingSink) NoteOn(pitch, velocity, channel int, at Tick) error {
	s.Recording.Append(Event{At: at, Kind: EventNoteOn, Instrument: s.Instrument, Channel: channel, Pitch: pitch, Velocity: velocity})
	return nil
}

func (s *RecordingSink) NoteOff(pitch, channel int, at Tick) error {
	s.Recording.Append(Event{At: at, Kind: EventNoteOff, Instrument: s.Instrument, Channel: channel, Pitch: pitch})
	return nil
}

func (s *RecordingSink) ControlChange(controller, value, channel int, at Tick) error {
	s.Recording.Append(Event{At: at, Kind: EventControl, Instrument: s.Instrument, Channel: channel, Controller: controller, Value: value})
	return nil
}

func (s *RecordingSink) FlushThrough(at Tick) error { return nil }

func (s *RecordingSink) Tempo(bpm float64, at Tick) error {
	s.Recording.SetTempo(bpm, at)
	return nil
}

// Sinks returns a SinkFactory whose sinks all record into r.
func (r *Recording) Sinks() SinkFactory {
	return func(inst *Instrument) (Sink, error) {
		return &RecordingSink{Recording: r, Instrument: inst.ID}, nil
	}
}
