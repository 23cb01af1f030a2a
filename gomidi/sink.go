package gomidi

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/clipseq"
)

type (
	// Sender is the part of a MIDI output port a RealtimeSink needs;
	// drivers.Out implements it.
	Sender interface {
		Send(data []byte) error
	}

	// RealtimeSink sends events to a MIDI output as soon as they are
	// submitted. Sending happens on a background goroutine, so submitting
	// never blocks the player; events are sent in submission order. If the
	// port fails, the error is returned by the next submission. Close may be
	// called concurrently with submissions.
	RealtimeSink struct {
		out  Sender
		name string
		msgs chan sinkItem
		done chan struct{}
		once sync.Once

		sendMu sync.RWMutex // guards closed and sending on msgs
		closed bool

		mu  sync.Mutex
		err error
	}

	sinkItem struct {
		msg   midi.Message
		flush chan struct{}
	}
)

var (
	ErrQueueFull  = errors.New("midi output queue is full")
	ErrSinkClosed = errors.New("midi output is closed")
)

// DefaultQueueLength is the number of events a RealtimeSink buffers.
const DefaultQueueLength = 1024

// NewRealtimeSink starts sending to out. name is used in error messages.
func NewRealtimeSink(out Sender, name string, queueLength int) *RealtimeSink {
	if queueLength <= 0 {
		queueLength = DefaultQueueLength
	}
	s := &RealtimeSink{
		out:  out,
		name: name,
		msgs: make(chan sinkItem, queueLength),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *RealtimeSink) String() string { return s.name }

func (s *RealtimeSink) NoteOn(pitch, velocity, channel int, at clipseq.Tick) error {
	return s.submit(midi.NoteOn(uint8(channel), uint8(pitch), uint8(velocity)))
}

func (s *RealtimeSink) NoteOff(pitch, channel int, at clipseq.Tick) error {
	return s.submit(midi.NoteOff(uint8(channel), uint8(pitch)))
}

func (s *RealtimeSink) ControlChange(controller, value, channel int, at clipseq.Tick) error {
	return s.submit(midi.ControlChange(uint8(channel), uint8(controller), uint8(value)))
}

// FlushThrough blocks until everything submitted so far has been sent. As
// events are sent when they are submitted, at is not needed.
func (s *RealtimeSink) FlushThrough(at clipseq.Tick) error {
	ch := make(chan struct{})
	s.sendMu.RLock()
	if s.closed {
		s.sendMu.RUnlock()
		return ErrSinkClosed
	}
	// the loop keeps draining msgs until Close closes it, which waits for
	// this lock, so the send always completes
	s.msgs <- sinkItem{flush: ch}
	s.sendMu.RUnlock()
	select {
	case <-ch:
	case <-s.done:
	}
	return s.takeErr()
}

// Close sends what is queued, stops the goroutine and closes the port if it
// can be closed.
func (s *RealtimeSink) Close() error {
	s.once.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.msgs)
		s.sendMu.Unlock()
		<-s.done
		if c, ok := s.out.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				s.setErr(err)
			}
		}
	})
	return s.takeErr()
}

func (s *RealtimeSink) submit(msg midi.Message) error {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	if err := s.takeErr(); err != nil {
		return err
	}
	select {
	case s.msgs <- sinkItem{msg: msg}:
		return nil
	default:
		return fmt.Errorf("%s: %w", s.name, ErrQueueFull)
	}
}

func (s *RealtimeSink) loop() {
	defer close(s.done)
	for it := range s.msgs {
		if it.flush != nil {
			close(it.flush)
			continue
		}
		if err := s.out.Send(it.msg); err != nil {
			s.setErr(fmt.Errorf("%s: sending %v failed: %w", s.name, it.msg, err))
		}
	}
}

func (s *RealtimeSink) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *RealtimeSink) takeErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}
