package clipseq

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// TransformKind selects the rewrite a Transform performs.
type TransformKind int

const (
	MapDegree TransformKind = iota
	MapOctave
	ChordExpand
	HumanizeTime
	HumanizeVelocity
	ProbabilityGate
	Arpeggiate
)

var transformKindNames = []string{
	"map_degree",
	"map_octave",
	"chord_expand",
	"humanize_time",
	"humanize_velocity",
	"probability_gate",
	"arpeggiate",
}

func (k TransformKind) String() string {
	if k < 0 || int(k) >= len(transformKindNames) {
		return fmt.Sprintf("TransformKind(%d)", int(k))
	}
	return transformKindNames[k]
}

func ParseTransformKind(s string) (TransformKind, error) {
	for i, n := range transformKindNames {
		if n == s {
			return TransformKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transform kind %q", s)
}

// Transform is an immutable description of a note stream rewrite. Which of
// the parameters matter depends on Kind:
//
//	map_degree         Values: degree offsets, cycled note by note
//	map_octave         Values: octave offsets, cycled note by note
//	chord_expand       Values: chord intervals, in scale steps for degree notes and semitones otherwise; default 0 2 4
//	humanize_time      Amount: maximum shift in beats
//	humanize_velocity  Amount: maximum velocity change
//	probability_gate   Probability: chance of a note being kept
//	arpeggiate         Descending: play simultaneous notes from the top
//
// Random decisions are drawn from the data pool named by Pool, or from the
// clip's pool when Pool is empty.
type Transform struct {
	ID              TransformID
	Kind            TransformKind
	Values          []int
	Amount          float64
	Probability     float64
	Descending      bool
	Pool            PoolID
	AuditionPattern PatternID
}

// Env is what a transform may consult besides its input stream.
type Env struct {
	Scale *Scale
	Pools *Pools
	Pool  PoolID // used when the transform names no pool
}

func (e Env) scale() *Scale {
	if e.Scale == nil {
		return DefaultScale
	}
	return e.Scale
}

func (e Env) pool(t *Transform) *Pool {
	id := e.Pool
	if t.Pool != "" {
		id = t.Pool
	}
	if p := e.Pools.Get(id); p != nil {
		return p
	}
	return NewPool(&PoolDef{ID: id})
}

// ApplyChain threads in through every transform of chain, first to last.
func ApplyChain(chain []*Transform, env Env, in iter.Seq[Note]) iter.Seq[Note] {
	for _, t := range chain {
		in = t.Apply(env, in)
	}
	return in
}

// Apply returns the rewritten stream. The input must be ordered by At and so
// is the output. Apply is lazy: nothing is read from in, and no pool value is
// consumed, until the result is iterated.
func (t *Transform) Apply(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	switch t.Kind {
	case MapDegree:
		return t.mapDegree(env, in)
	case MapOctave:
		return t.mapOctave(env, in)
	case ChordExpand:
		return t.chordExpand(env, in)
	case HumanizeTime:
		return t.humanizeTime(env, in)
	case HumanizeVelocity:
		return t.humanizeVelocity(env, in)
	case ProbabilityGate:
		return t.probabilityGate(env, in)
	case Arpeggiate:
		return t.arpeggiate(in)
	}
	return in
}

// mapNotes applies f to the notes of in, passing controller changes through.
// f reports false to drop the note.
func mapNotes(in iter.Seq[Note], f func(n *Note) bool) iter.Seq[Note] {
	return func(yield func(Note) bool) {
		for n := range in {
			if n.Kind == NoteKindNote && !f(&n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

func (t *Transform) mapDegree(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	if len(t.Values) == 0 {
		return in
	}
	return func(yield func(Note) bool) {
		i := 0
		for n := range mapNotes(in, func(n *Note) bool {
			off := t.Values[i%len(t.Values)]
			i++
			if n.HasDegree {
				n.Degree += off
				n.Pitch = clamp(env.scale().Pitch(n.Degree, n.Octave), 0, 127)
			}
			return true
		}) {
			if !yield(n) {
				return
			}
		}
	}
}

func (t *Transform) mapOctave(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	if len(t.Values) == 0 {
		return in
	}
	return func(yield func(Note) bool) {
		i := 0
		for n := range mapNotes(in, func(n *Note) bool {
			off := t.Values[i%len(t.Values)]
			i++
			if n.HasDegree {
				n.Octave += off
				n.Pitch = env.scale().Pitch(n.Degree, n.Octave)
			} else {
				n.Pitch += 12 * off
			}
			n.Pitch = clamp(n.Pitch, 0, 127)
			return true
		}) {
			if !yield(n) {
				return
			}
		}
	}
}

var defaultChord = []int{0, 2, 4}

func (t *Transform) chordExpand(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	intervals := t.Values
	if len(intervals) == 0 {
		intervals = defaultChord
	}
	return func(yield func(Note) bool) {
		chord := make([]Note, 0, len(intervals))
		for n := range in {
			if n.Kind != NoteKindNote {
				if !yield(n) {
					return
				}
				continue
			}
			chord = chord[:0]
			for _, iv := range intervals {
				c := n
				if n.HasDegree {
					c.Degree = n.Degree + iv
					c.Pitch = env.scale().Pitch(c.Degree, c.Octave)
				} else {
					c.Pitch = n.Pitch + iv
				}
				c.Pitch = clamp(c.Pitch, 0, 127)
				chord = append(chord, c)
			}
			slices.SortStableFunc(chord, func(a, b Note) int { return a.Pitch - b.Pitch })
			chord = slices.CompactFunc(chord, func(a, b Note) bool { return a.Pitch == b.Pitch })
			for _, c := range chord {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// humanizeTime shifts every note by up to ±Amount beats. A note read at At
// can only be followed by notes shifted to At-δ or later, so everything at or
// before that is released from the reorder buffer.
func (t *Transform) humanizeTime(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	delta := BeatsToTicks(math.Abs(t.Amount))
	if delta == 0 {
		return in
	}
	return func(yield func(Note) bool) {
		pool := env.pool(t)
		var buf []Note
		release := func(upTo Tick, all bool) bool {
			i := 0
			for ; i < len(buf) && (all || buf[i].At <= upTo); i++ {
				if !yield(buf[i]) {
					return false
				}
			}
			buf = buf[i:]
			return true
		}
		for n := range in {
			at := n.At
			if n.Kind == NoteKindNote {
				n.At += Tick(math.Round((pool.Float()*2 - 1) * float64(delta)))
			}
			pos, _ := slices.BinarySearchFunc(buf, n.At, func(e Note, target Tick) int {
				if e.At <= target {
					return -1
				}
				return 1
			})
			buf = slices.Insert(buf, pos, n)
			if !release(at-delta, false) {
				return
			}
		}
		release(0, true)
	}
}

func (t *Transform) humanizeVelocity(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	return func(yield func(Note) bool) {
		pool := env.pool(t)
		for n := range mapNotes(in, func(n *Note) bool {
			change := math.Round((pool.Float()*2 - 1) * t.Amount)
			n.Velocity = clamp(n.Velocity+int(change), 1, 127)
			return true
		}) {
			if !yield(n) {
				return
			}
		}
	}
}

func (t *Transform) probabilityGate(env Env, in iter.Seq[Note]) iter.Seq[Note] {
	return func(yield func(Note) bool) {
		pool := env.pool(t)
		for n := range mapNotes(in, func(n *Note) bool {
			return pool.Float() < t.Probability
		}) {
			if !yield(n) {
				return
			}
		}
	}
}

// arpeggiate spreads notes that start together evenly over the time until
// the next note starts, or over the shortest of them if that ends sooner.
func (t *Transform) arpeggiate(in iter.Seq[Note]) iter.Seq[Note] {
	return func(yield func(Note) bool) {
		var group []Note
		flush := func(next Tick, hasNext bool) bool {
			if len(group) == 0 {
				return true
			}
			defer func() { group = group[:0] }()
			if len(group) == 1 {
				return yield(group[0])
			}
			start := group[0].At
			span := group[0].Length
			for _, n := range group[1:] {
				span = min(span, n.Length)
			}
			if hasNext && next-start < span {
				span = next - start
			}
			slices.SortStableFunc(group, func(a, b Note) int {
				if t.Descending {
					return b.Pitch - a.Pitch
				}
				return a.Pitch - b.Pitch
			})
			k := Tick(len(group))
			for i, n := range group {
				n.At = start + span*Tick(i)/k
				n.Length = max(start+span*Tick(i+1)/k-n.At, 1)
				if !yield(n) {
					return false
				}
			}
			return true
		}
		for n := range in {
			if n.Kind != NoteKindNote {
				if len(group) > 0 && group[0].At != n.At {
					if !flush(n.At, true) {
						return
					}
				}
				if !yield(n) {
					return
				}
				continue
			}
			if len(group) > 0 && group[0].At != n.At {
				if !flush(n.At, true) {
					return
				}
			}
			group = append(group, n)
		}
		flush(0, false)
	}
}
