package cmd

import (
	"errors"

	"github.com/vsariola/clipseq"
)

type (
	// MIDIContext is what the command line tools need from a MIDI
	// implementation.
	MIDIContext interface {
		OutputNames() []string
		Sinks() clipseq.SinkFactory
		Close() error
	}

	// NullMIDIContext has no outputs; every sink request fails.
	NullMIDIContext struct{}
)

var ErrNoMIDI = errors.New("MIDI output is not available in this build")

func (NullMIDIContext) OutputNames() []string { return nil }
func (NullMIDIContext) Close() error          { return nil }

func (NullMIDIContext) Sinks() clipseq.SinkFactory {
	return func(*clipseq.Instrument) (clipseq.Sink, error) { return nil, ErrNoMIDI }
}
