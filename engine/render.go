package engine

import (
	"context"
	"sync"
	"time"

	"github.com/vsariola/clipseq"
)

// VirtualTime is a clock that only moves when something sleeps on it. Use it
// through Options to play a song faster than real time, e.g. to render it to
// a file or to test timing exactly.
type VirtualTime struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

func NewVirtualTime() *VirtualTime {
	t := time.Unix(0, 0).UTC()
	return &VirtualTime{start: t, now: t}
}

func (v *VirtualTime) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Sleep advances the clock by d without waiting.
func (v *VirtualTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if d > 0 {
		v.now = v.now.Add(d)
	}
	return nil
}

// Elapsed returns how far the clock has moved since it was created.
func (v *VirtualTime) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now.Sub(v.start)
}

// Options returns o with its time source replaced by v.
func (v *VirtualTime) Options(o Options) Options {
	o.Now = v.Now
	o.Sleep = v.Sleep
	return o
}

// Render advances p until it stops or limit ticks have been played, and
// returns the number of ticks played. When the limit is hit the player is
// stopped, releasing every sounding note. A limit of 0 or less means no
// limit, which never returns for clips that repeat forever. The player should
// be created with VirtualTime options, or Render runs in real time.
func Render(ctx context.Context, p *MultiPlayer, limit clipseq.Tick) (clipseq.Tick, error) {
	var n clipseq.Tick
	for !p.Stopped() && (limit <= 0 || n < limit) {
		if err := p.Advance(ctx); err != nil {
			return n, err
		}
		n++
	}
	if !p.Stopped() {
		p.Stop()
	}
	return n, nil
}
