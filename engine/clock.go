package engine

import (
	"math"
	"math/big"
	"time"

	"github.com/vsariola/clipseq"
)

// Clock turns a tempo into tick deadlines on the wall clock. It never sleeps
// or calls back: the player asks how long until the next tick, waits, and
// then commits the tick with Tick.
//
// Deadlines are computed from an anchor (a tick and the wall time it was
// due) instead of being accumulated, so rounding never drifts. Changing the
// tempo moves the anchor to the tick where the change takes effect.
type Clock struct {
	now        func() time.Time
	bpm        float64
	pending    float64 // applied at the next commit, 0 if none
	tick       clipseq.Tick
	anchorTick clipseq.Tick
	anchorTime time.Time
	started    bool
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, tick: -1}
}

// Start restarts the clock at tick 0, due now.
func (c *Clock) Start(bpm float64) error {
	if err := clipseq.ValidateBPM(bpm); err != nil {
		return err
	}
	c.bpm = bpm
	c.pending = 0
	c.tick = -1
	c.anchorTick = 0
	c.anchorTime = c.now()
	c.started = true
	return nil
}

// Resume continues a started clock after a pause: tick at becomes the next
// tick and is due now. at must not be before Next.
func (c *Clock) Resume(at clipseq.Tick) {
	if at < c.tick+1 {
		at = c.tick + 1
	}
	if c.pending > 0 {
		c.bpm, c.pending = c.pending, 0
	}
	c.tick = at - 1
	c.anchorTick = at
	c.anchorTime = c.now()
}

func (c *Clock) Started() bool { return c.started }

// SetBPM changes the tempo from the next committed tick on.
func (c *Clock) SetBPM(bpm float64) error {
	if err := clipseq.ValidateBPM(bpm); err != nil {
		return err
	}
	if bpm == c.bpm {
		c.pending = 0
		return nil
	}
	c.pending = bpm
	return nil
}

// BPM returns the tempo of the current tick.
func (c *Clock) BPM() float64 { return c.bpm }

// PendingBPM returns the tempo the next tick will have.
func (c *Clock) PendingBPM() float64 {
	if c.pending > 0 {
		return c.pending
	}
	return c.bpm
}

// Now returns the last committed tick, or -1 before the first one.
func (c *Clock) Now() clipseq.Tick { return c.tick }

// Next returns the tick that the next call to Tick commits.
func (c *Clock) Next() clipseq.Tick { return c.tick + 1 }

// NowBeat returns the beat position of the last committed tick. It is 0
// before the first tick.
func (c *Clock) NowBeat() *big.Rat {
	return big.NewRat(int64(max(c.tick, 0)), clipseq.TicksPerBeat)
}

// UntilNextTick returns the wall time left until the next tick is due. The
// result is negative when the caller is late.
func (c *Clock) UntilNextTick() time.Duration {
	return c.deadline(c.tick+1).Sub(c.now())
}

// Tick commits the next tick and returns it. A pending tempo applies from
// this tick on.
func (c *Clock) Tick() clipseq.Tick {
	c.tick++
	if c.pending > 0 {
		c.anchorTime = c.deadline(c.tick)
		c.anchorTick = c.tick
		c.bpm, c.pending = c.pending, 0
	}
	return c.tick
}

func (c *Clock) deadline(t clipseq.Tick) time.Time {
	return c.anchorTime.Add(tickDuration(t-c.anchorTick, c.bpm))
}

func tickDuration(ticks clipseq.Tick, bpm float64) time.Duration {
	return time.Duration(math.Round(float64(ticks) * 60 * float64(time.Second) / (bpm * clipseq.TicksPerBeat)))
}
