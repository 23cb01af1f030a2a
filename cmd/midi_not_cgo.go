//go:build !cgo

package cmd

func NewMIDIContext(routes map[string]string, queueLength int) MIDIContext {
	// with no cgo, we cannot use MIDI, so return a null context
	return NullMIDIContext{}
}
