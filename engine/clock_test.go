package engine_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/engine"
)

func TestClockTempoChangeAppliesAtCommit(t *testing.T) {
	vt := engine.NewVirtualTime()
	c := engine.NewClock(vt.Now)
	if err := c.Start(120); err != nil {
		t.Fatal(err)
	}
	if d := c.UntilNextTick(); d != 0 {
		t.Errorf("tick 0 should be due at start, got %v", d)
	}
	if n := c.Tick(); n != 0 {
		t.Errorf("first tick: got %v", n)
	}
	if err := c.SetBPM(60); err != nil {
		t.Fatal(err)
	}
	if c.BPM() != 120 || c.PendingBPM() != 60 {
		t.Errorf("tempo should stay 120 until the next commit, got %v pending %v", c.BPM(), c.PendingBPM())
	}
	if d := c.UntilNextTick(); d != 5208333 {
		t.Errorf("tick 1 at 120 bpm: got %v", d)
	}
	c.Tick()
	if c.BPM() != 60 {
		t.Errorf("tempo after commit: got %v", c.BPM())
	}
	if d := c.UntilNextTick(); d != 5208333+10416667 {
		t.Errorf("tick 2 after the change: got %v", d)
	}
}

func TestClockPositions(t *testing.T) {
	vt := engine.NewVirtualTime()
	c := engine.NewClock(vt.Now)
	if c.Now() != -1 || c.Next() != 0 || c.NowBeat().Sign() != 0 {
		t.Errorf("unstarted clock: now %v next %v beat %v", c.Now(), c.Next(), c.NowBeat())
	}
	if err := c.Start(120); err != nil {
		t.Fatal(err)
	}
	for range 49 {
		c.Tick()
	}
	if c.NowBeat().Cmp(big.NewRat(1, 2)) != 0 {
		t.Errorf("beat at tick 48: got %v", c.NowBeat())
	}
	vt.Sleep(t.Context(), time.Second)
	if d := c.UntilNextTick(); d >= 0 {
		t.Errorf("a late clock should report a negative wait, got %v", d)
	}
	c.Resume(384)
	if c.Next() != 384 || c.UntilNextTick() != 0 {
		t.Errorf("after resume: next %v due in %v", c.Next(), c.UntilNextTick())
	}
	c.Resume(10)
	if c.Next() != 384 {
		t.Errorf("resume must not move backwards, next is %v", c.Next())
	}
}

func TestClockInvalidTempo(t *testing.T) {
	c := engine.NewClock(nil)
	for _, bpm := range []float64{0, -10} {
		if err := c.Start(bpm); !errors.Is(err, clipseq.ErrInvalidTempo) {
			t.Errorf("Start(%v): got %v", bpm, err)
		}
		if err := c.SetBPM(bpm); !errors.Is(err, clipseq.ErrInvalidTempo) {
			t.Errorf("SetBPM(%v): got %v", bpm, err)
		}
	}
}
