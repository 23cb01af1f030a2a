package clipseq

import (
	"fmt"
	"strconv"
	"strings"
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchName returns the name of a MIDI pitch, with middle C (60) named C4.
func PitchName(pitch int) string {
	return fmt.Sprintf("%s%d", pitchClassNames[mod(pitch, 12)], floorDiv(pitch, 12)-1)
}

// ParsePitch parses names like "C4", "F#3", "Bb2" or "C-1" into MIDI pitches.
// Plain integers are accepted as MIDI pitches.
func ParsePitch(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty pitch")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("pitch %d out of range 0..127", n)
		}
		return n, nil
	}
	class, ok := pitchClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch %q", s)
	}
	rest := s[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			class++
		} else {
			class--
		}
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch %q", s)
	}
	p := (octave+1)*12 + class
	if p < 0 || p > 127 {
		return 0, fmt.Errorf("pitch %q out of range", s)
	}
	return p, nil
}

func mod(a, b int) int {
	return (a%b + b) % b
}

func floorDiv(a, b int) int {
	return (a - mod(a, b)) / b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
