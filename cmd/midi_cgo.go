//go:build cgo

package cmd

import (
	"github.com/vsariola/clipseq/gomidi"
)

func NewMIDIContext(routes map[string]string, queueLength int) MIDIContext {
	c := gomidi.NewContext()
	c.Routes = routes
	c.QueueLength = queueLength
	return c
}
