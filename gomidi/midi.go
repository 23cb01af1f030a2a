//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/vsariola/clipseq"
)

// Context owns the MIDI driver and the output ports opened through it. A
// port is opened once and shared by every instrument routed to it.
type Context struct {
	driver drivers.Driver
	sinks  map[string]*RealtimeSink // by port name

	// Routes maps instrument device names to port name prefixes. Devices
	// without a route use their own name as the prefix.
	Routes map[string]string

	QueueLength int
}

var ErrNoDriver = errors.New("no MIDI driver available")

// NewContext opens the rtmidi driver. If that fails the context is still
// usable but has no ports.
func NewContext() *Context {
	c := &Context{sinks: map[string]*RealtimeSink{}}
	// there's not much we can do if this fails, so a nil driver just means
	// that no ports are available
	if d, err := rtmididrv.New(); err == nil {
		c.driver = d
	}
	return c
}

// Outputs returns the output ports of the driver.
func (c *Context) Outputs() ([]drivers.Out, error) {
	if c.driver == nil {
		return nil, ErrNoDriver
	}
	return c.driver.Outs()
}

// OutputNames returns the names of the output ports.
func (c *Context) OutputNames() []string {
	outs, err := c.Outputs()
	if err != nil {
		return nil
	}
	names := make([]string, len(outs))
	for i, o := range outs {
		names[i] = o.String()
	}
	return names
}

// OpenBy opens the first output port whose name starts with namePrefix; an
// empty prefix takes the first port.
func (c *Context) OpenBy(namePrefix string) (*RealtimeSink, error) {
	outs, err := c.Outputs()
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		if !strings.HasPrefix(out.String(), namePrefix) {
			continue
		}
		if s, ok := c.sinks[out.String()]; ok {
			return s, nil
		}
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("opening MIDI output %q failed: %w", out.String(), err)
		}
		s := NewRealtimeSink(out, out.String(), c.QueueLength)
		c.sinks[out.String()] = s
		return s, nil
	}
	if namePrefix == "" {
		return nil, errors.New("could not find any MIDI output")
	}
	return nil, fmt.Errorf("could not find any MIDI output starting with %q", namePrefix)
}

// Sinks returns a SinkFactory that opens the port routed to each
// instrument's device.
func (c *Context) Sinks() clipseq.SinkFactory {
	return func(inst *clipseq.Instrument) (clipseq.Sink, error) {
		prefix, ok := c.Routes[inst.Device]
		if !ok {
			prefix = inst.Device
		}
		return c.OpenBy(prefix)
	}
}

// Close closes every opened port and the driver.
func (c *Context) Close() error {
	var errs []error
	for _, s := range c.sinks {
		errs = append(errs, s.Close())
	}
	clear(c.sinks)
	if c.driver != nil {
		errs = append(errs, c.driver.Close())
	}
	return errors.Join(errs...)
}
