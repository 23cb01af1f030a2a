package engine

import (
	"context"
	"log/slog"
	"time"
)

// Options configures a MultiPlayer. The zero value plays in real time and
// logs to slog.Default().
type Options struct {
	Logger *slog.Logger

	// Now and Sleep replace the wall clock, e.g. with a VirtualTime for
	// offline rendering and tests. Sleep must return early with the context's
	// error when it is cancelled.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	// Broker, if set, is polled for control messages at the start of every
	// Advance and receives status messages.
	Broker *Broker

	// OnClipEvent is called synchronously on every clip state change.
	OnClipEvent func(ClipEvent)

	// BeatsPerBar overrides the song's bar length when positive.
	BeatsPerBar int
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o Options) now() func() time.Time {
	if o.Now == nil {
		return time.Now
	}
	return o.Now
}

func (o Options) sleep() func(ctx context.Context, d time.Duration) error {
	if o.Sleep == nil {
		return sleepContext
	}
	return o.Sleep
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
