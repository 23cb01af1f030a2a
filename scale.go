package clipseq

import (
	"fmt"
	"slices"
)

// ScaleTypes lists the semitone intervals of the named scale types, measured
// from the root.
var ScaleTypes = map[string][]int{
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"natural_minor":    {0, 2, 3, 5, 7, 8, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic_minor":    {0, 2, 3, 5, 7, 9, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"major_pentatonic": {0, 2, 4, 7, 9},
	"minor_pentatonic": {0, 3, 5, 7, 10},
	"blues":            {0, 3, 5, 6, 7, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"whole_tone":       {0, 2, 4, 6, 8, 10},
}

// Scale is an ordered set of pitch classes above a root pitch. It resolves
// scale degrees to concrete MIDI pitches.
type Scale struct {
	ID        ScaleID
	Root      int   // MIDI pitch of degree 1 in octave offset 0
	Intervals []int // ascending semitone offsets within one octave, starting at 0
}

// NewScale builds a scale of the named type. An unknown type is an error.
func NewScale(id ScaleID, root int, typ string) (*Scale, error) {
	intervals, ok := ScaleTypes[typ]
	if !ok {
		return nil, fmt.Errorf("unknown scale type %q", typ)
	}
	return &Scale{ID: id, Root: root, Intervals: slices.Clone(intervals)}, nil
}

// Pitch resolves a 1-based scale degree and an octave offset. Degrees past
// the end of the scale wrap into the following octaves, and degrees below 1
// into the preceding ones, so in C major degree 8 is C5 and degree 0 is B3.
func (s *Scale) Pitch(degree, octave int) int {
	n := len(s.Intervals)
	if n == 0 {
		return s.Root + degree - 1 + 12*octave
	}
	d := degree - 1
	return s.Root + s.Intervals[mod(d, n)] + 12*(floorDiv(d, n)+octave)
}

// Len returns the number of degrees per octave.
func (s *Scale) Len() int {
	if len(s.Intervals) == 0 {
		return 12
	}
	return len(s.Intervals)
}

// DefaultScale is used by clips that name no scale when the song has no
// default scale either.
var DefaultScale = &Scale{ID: "c-major", Root: 60, Intervals: ScaleTypes["major"]}
