package clipseq

// Clip binds a sequence of patterns to a Track. Slot i of a clip plays
// Patterns[i] through the transform chain Transforms[i], resolving degrees
// with Scales[i] and shifting the tempo by TempoShifts[i]; the shorter
// sequences are padded with their last element. After the last slot the clip
// starts over from slot 0, until it has played Repeat times.
type Clip struct {
	ID          ClipID
	Track       TrackID
	Patterns    Slots[PatternID]
	Transforms  Slots[[]TransformID]
	Scales      Slots[ScaleID]
	TempoShifts Slots[float64] // additive BPM, applied while the slot plays

	Rate   float64 // multiplies each pattern's rate; 0 means 1
	Repeat int     // number of passes over all slots; 0 or less means forever

	// AutoSceneAdvance launches the scene after the clip's scene when the
	// clip ends.
	AutoSceneAdvance bool

	// Pool is the data pool used by transforms that name none.
	Pool PoolID

	// Scene is the scene the clip belongs to, set when the scene is added to
	// a Song.
	Scene SceneID

	hidden bool
}

// NewAuditionClip returns a hidden copy of c that plays once. Hidden clips
// are never part of a Song.
func NewAuditionClip(c Clip) *Clip {
	c.hidden = true
	c.Repeat = 1
	c.AutoSceneAdvance = false
	c.Scene = ""
	return &c
}

func (c *Clip) Hidden() bool { return c.hidden }

func (c *Clip) NumSlots() int { return len(c.Patterns) }

// Infinite reports whether the clip repeats until it is stopped or preempted.
func (c *Clip) Infinite() bool { return c.Repeat <= 0 }

// EffectiveRate returns how many tokens of p the clip plays per beat.
func (c *Clip) EffectiveRate(p *Pattern) float64 {
	r := c.Rate
	if r <= 0 {
		r = 1
	}
	return r * p.TokenRate()
}
