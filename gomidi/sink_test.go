package gomidi_test

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/clipseq/gomidi"
)

type fakeOut struct {
	mu     sync.Mutex
	sent   []string
	fail   error
	closed bool
}

func (f *fakeOut) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, midi.Message(data).String())
	return nil
}

func (f *fakeOut) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeOut) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sent)
}

func TestRealtimeSinkOrder(t *testing.T) {
	out := &fakeOut{}
	s := gomidi.NewRealtimeSink(out, "fake", 0)
	defer s.Close()
	for _, err := range []error{
		s.NoteOn(60, 100, 0, 0),
		s.ControlChange(74, 20, 1, 0),
		s.NoteOff(60, 0, 24),
	} {
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := s.FlushThrough(24); err != nil {
		t.Fatal(err)
	}
	want := []string{
		midi.NoteOn(0, 60, 100).String(),
		midi.ControlChange(1, 74, 20).String(),
		midi.NoteOff(0, 60).String(),
	}
	if got := out.messages(); !slices.Equal(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
}

func TestRealtimeSinkReportsSendErrors(t *testing.T) {
	errUnplugged := errors.New("unplugged")
	out := &fakeOut{fail: errUnplugged}
	s := gomidi.NewRealtimeSink(out, "fake", 0)
	defer s.Close()
	if err := s.NoteOn(60, 100, 0, 0); err != nil {
		t.Fatalf("submitting should not wait for the port, got %v", err)
	}
	if err := s.FlushThrough(0); !errors.Is(err, errUnplugged) {
		t.Errorf("flush: got %v, want the send error", err)
	}
	if err := s.FlushThrough(0); err != nil {
		t.Errorf("an error should be reported once, got %v again", err)
	}
}

func TestRealtimeSinkClose(t *testing.T) {
	out := &fakeOut{}
	s := gomidi.NewRealtimeSink(out, "fake", 0)
	if err := s.NoteOn(60, 100, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if len(out.messages()) != 1 || !out.closed {
		t.Errorf("close should send the queue and close the port: sent %v, closed %v", out.messages(), out.closed)
	}
	if err := s.NoteOff(60, 0, 1); !errors.Is(err, gomidi.ErrSinkClosed) {
		t.Errorf("after close: got %v", err)
	}
	if err := s.FlushThrough(1); !errors.Is(err, gomidi.ErrSinkClosed) {
		t.Errorf("flush after close: got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestRealtimeSinkCloseWhileSubmitting(t *testing.T) {
	s := gomidi.NewRealtimeSink(&fakeOut{}, "fake", 4)
	var wg sync.WaitGroup
	for ch := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				err := s.NoteOn(i%128, 100, ch, 0)
				if errors.Is(err, gomidi.ErrSinkClosed) {
					return
				}
				if err != nil && !errors.Is(err, gomidi.ErrQueueFull) {
					t.Errorf("unexpected error %v", err)
					return
				}
			}
		}()
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
}
