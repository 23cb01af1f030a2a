package clipseq

import "math"

// Tick is a position or a duration on the beat grid, counted in
// 1/TicksPerBeat fractions of a beat. All scheduling happens in whole ticks,
// so beat positions are exact rationals tick/TicksPerBeat.
type Tick int64

// TicksPerBeat is the scheduling resolution of the engine.
const TicksPerBeat = 96

// Beats returns the tick position in beats.
func (t Tick) Beats() float64 { return float64(t) / TicksPerBeat }

// BeatsToTicks rounds a beat position to the nearest tick.
func BeatsToTicks(beats float64) Tick {
	return Tick(math.Round(beats * TicksPerBeat))
}

// TokenOffset returns the offset of the index-th token from the start of a
// pattern played at rate tokens per beat. Offsets are computed from the index
// rather than accumulated, so rounding never drifts over long patterns.
func TokenOffset(index int, rate float64) Tick {
	if rate <= 0 {
		rate = 1
	}
	return Tick(math.Round(float64(index) * TicksPerBeat / rate))
}

// NextBoundary returns the first multiple of period that is >= t.
func NextBoundary(t, period Tick) Tick {
	if period <= 0 {
		return t
	}
	r := ((t % period) + period) % period
	if r == 0 {
		return t
	}
	return t + period - r
}
