package clipseq

import "fmt"

// EventKind is the type of a dispatched event. The order of the constants is
// the order events at the same tick are dispatched in: releases first, then
// controller changes, then new notes.
type EventKind int

const (
	EventNoteOff EventKind = iota
	EventControl
	EventNoteOn
)

var eventKindNames = []string{"note_off", "control", "note_on"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event is one timed message sent to a Sink.
type Event struct {
	At         Tick         `msgpack:"at"`
	Kind       EventKind    `msgpack:"kind"`
	Instrument InstrumentID `msgpack:"inst,omitempty"`
	Channel    int          `msgpack:"ch"`
	Pitch      int          `msgpack:"pitch,omitempty"`
	Velocity   int          `msgpack:"vel,omitempty"`
	Controller int          `msgpack:"cc,omitempty"`
	Value      int          `msgpack:"val,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventNoteOn:
		return fmt.Sprintf("%v %s on ch%d vel%d", e.At, PitchName(e.Pitch), e.Channel, e.Velocity)
	case EventNoteOff:
		return fmt.Sprintf("%v %s off ch%d", e.At, PitchName(e.Pitch), e.Channel)
	default:
		return fmt.Sprintf("%v cc%d=%d ch%d", e.At, e.Controller, e.Value, e.Channel)
	}
}

// Send delivers the event to s.
func (e Event) Send(s Sink) error {
	switch e.Kind {
	case EventNoteOn:
		return s.NoteOn(e.Pitch, e.Velocity, e.Channel, e.At)
	case EventNoteOff:
		return s.NoteOff(e.Pitch, e.Channel, e.At)
	default:
		return s.ControlChange(e.Controller, e.Value, e.Channel, e.At)
	}
}
