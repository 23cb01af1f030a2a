package clipseq

import "iter"

// NoteKind separates sounding notes from controller changes in a note stream.
type NoteKind int

const (
	NoteKindNote NoteKind = iota
	NoteKindControl
)

// Note is the element of the stream that transforms rewrite. A note starts at
// At and is released Length ticks later; controller changes have no length.
type Note struct {
	Kind     NoteKind
	At       Tick
	Length   Tick
	Pitch    int
	Velocity int

	// Degree and Octave are kept for notes that came from scale degrees, so
	// that transforms can move them along the scale.
	HasDegree bool
	Degree    int
	Octave    int

	Controller int
	Value      int
}

// Notes turns pattern steps into a note stream: rests yield nothing, ties
// extend the previous note instead of releasing it, and every other step
// starts a new note lasting one step. A tie with no previous note acts as a
// rest. Controller steps do not end a note, so a tie after them still
// extends it; they are yielded after the note they follow.
func Notes(steps iter.Seq[Step]) iter.Seq[Note] {
	return func(yield func(Note) bool) {
		var (
			pending    Note
			hasPending bool
			controls   []Note
			gap        Tick // controller steps since the pending note was last extended
		)
		flush := func() bool {
			if hasPending {
				hasPending = false
				if !yield(pending) {
					return false
				}
			}
			for _, c := range controls {
				if !yield(c) {
					return false
				}
			}
			controls, gap = controls[:0], 0
			return true
		}
		for s := range steps {
			switch s.Token.Kind {
			case TokenTie:
				if hasPending {
					pending.Length += gap + s.Length
					gap = 0
				}
			case TokenRest:
				if !flush() {
					return
				}
			case TokenControl:
				c := Note{Kind: NoteKindControl, At: s.At, Controller: s.Token.Controller, Value: s.Token.Value}
				if !hasPending {
					if !yield(c) {
						return
					}
					continue
				}
				controls = append(controls, c)
				gap += s.Length
			case TokenDegree, TokenPitch:
				if !flush() {
					return
				}
				v := s.Token.Velocity
				if v <= 0 {
					v = DefaultVelocity
				}
				pending = Note{
					Kind:      NoteKindNote,
					At:        s.At,
					Length:    s.Length,
					Pitch:     s.Pitch,
					Velocity:  v,
					HasDegree: s.Token.Kind == TokenDegree,
					Degree:    s.Token.Degree,
					Octave:    s.Token.Octave,
				}
				hasPending = true
			}
		}
		flush()
	}
}
