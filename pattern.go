package clipseq

import "iter"

// Pattern is an immutable, finite and restartable sequence of tokens. Rate
// tells how many tokens are played per beat; a clip multiplies it with its
// own rate.
type Pattern struct {
	ID                 PatternID
	Tokens             []Token
	Rate               float64      // tokens per beat, 0 means 1
	AuditionInstrument InstrumentID // instrument used when the pattern is auditioned alone
}

// Step is one token of an iterated pattern, placed on the beat grid.
type Step struct {
	Index  int
	At     Tick
	Length Tick // ticks until the next step
	Token  Token
	Pitch  int // resolved pitch of TokenDegree and TokenPitch tokens
}

// Len returns the number of tokens in the pattern.
func (p *Pattern) Len() int { return len(p.Tokens) }

// TokenRate returns the pattern's own rate, defaulting to 1.
func (p *Pattern) TokenRate() float64 {
	if p.Rate <= 0 {
		return 1
	}
	return p.Rate
}

// Duration returns how long the pattern lasts when played at rate.
func (p *Pattern) Duration(rate float64) Tick {
	return TokenOffset(len(p.Tokens), rate)
}

// Iterate yields exactly Len() steps, the first at start and each following
// one 1/rate beats later. Degree tokens are resolved with scale. Rests and
// ties are yielded as well; consumers decide what they mean.
func (p *Pattern) Iterate(scale *Scale, start Tick, rate float64) iter.Seq[Step] {
	if scale == nil {
		scale = DefaultScale
	}
	return func(yield func(Step) bool) {
		for i, t := range p.Tokens {
			at := start + TokenOffset(i, rate)
			s := Step{
				Index:  i,
				At:     at,
				Length: start + TokenOffset(i+1, rate) - at,
				Token:  t,
			}
			switch t.Kind {
			case TokenDegree:
				s.Pitch = scale.Pitch(t.Degree, t.Octave)
			case TokenPitch:
				s.Pitch = t.Pitch
			}
			if !yield(s) {
				return
			}
		}
	}
}
