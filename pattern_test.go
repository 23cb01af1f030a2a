package clipseq_test

import (
	"slices"
	"testing"

	"github.com/vsariola/clipseq"
)

func mustTokens(t *testing.T, s string) []clipseq.Token {
	t.Helper()
	toks, err := clipseq.ParseTokens(s)
	if err != nil {
		t.Fatalf("ParseTokens(%q) failed: %v", s, err)
	}
	return toks
}

func TestPatternIterate(t *testing.T) {
	p := &clipseq.Pattern{ID: "p", Tokens: mustTokens(t, "1 2 3 4")}
	steps := slices.Collect(p.Iterate(clipseq.DefaultScale, 100, 4))
	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}
	for i, s := range steps {
		if want := clipseq.Tick(100 + 24*i); s.At != want || s.Length != 24 {
			t.Errorf("step %d: at %v length %v, want at %v length 24", i, s.At, s.Length, want)
		}
	}
	if got := []int{steps[0].Pitch, steps[1].Pitch, steps[2].Pitch, steps[3].Pitch}; !slices.Equal(got, []int{60, 62, 64, 65}) {
		t.Errorf("pitches: got %v", got)
	}
	if d := p.Duration(4); d != 96 {
		t.Errorf("duration: got %v, want 96", d)
	}
}

func TestTokenOffsetsDoNotDrift(t *testing.T) {
	// 7 tokens per beat does not divide the tick grid; positions must still
	// be exact after any number of tokens
	for i := 0; i <= 7000; i += 7 {
		if got, want := clipseq.TokenOffset(i, 7), clipseq.Tick(i/7*96); got != want {
			t.Fatalf("offset of token %d: got %v, want %v", i, got, want)
		}
	}
	p := &clipseq.Pattern{Tokens: make([]clipseq.Token, 7)}
	var total clipseq.Tick
	for s := range p.Iterate(nil, 0, 7) {
		total += s.Length
	}
	if total != 96 {
		t.Errorf("step lengths sum to %v, want 96", total)
	}
}

func TestNotesTiesAndRests(t *testing.T) {
	p := &clipseq.Pattern{Tokens: mustTokens(t, "1 _ _ 3 - _ cc1=2 5@80")}
	notes := slices.Collect(clipseq.Notes(p.Iterate(clipseq.DefaultScale, 0, 1)))
	want := []clipseq.Note{
		{Kind: clipseq.NoteKindNote, At: 0, Length: 288, Pitch: 60, Velocity: 100, HasDegree: true, Degree: 1},
		{Kind: clipseq.NoteKindNote, At: 288, Length: 96, Pitch: 64, Velocity: 100, HasDegree: true, Degree: 3},
		{Kind: clipseq.NoteKindControl, At: 576, Controller: 1, Value: 2},
		{Kind: clipseq.NoteKindNote, At: 672, Length: 96, Pitch: 67, Velocity: 80, HasDegree: true, Degree: 5},
	}
	if !slices.Equal(notes, want) {
		t.Errorf("got notes\n%+v\nwant\n%+v", notes, want)
	}
}

func TestNotesTieAcrossController(t *testing.T) {
	for _, c := range []struct {
		tokens string
		want   []clipseq.Note
	}{
		{"C4 cc74=20 _ -", []clipseq.Note{
			{Kind: clipseq.NoteKindNote, At: 0, Length: 288, Pitch: 60, Velocity: 100},
			{Kind: clipseq.NoteKindControl, At: 96, Controller: 74, Value: 20},
		}},
		{"C4 cc74=20 - E4", []clipseq.Note{
			{Kind: clipseq.NoteKindNote, At: 0, Length: 96, Pitch: 60, Velocity: 100},
			{Kind: clipseq.NoteKindControl, At: 96, Controller: 74, Value: 20},
			{Kind: clipseq.NoteKindNote, At: 288, Length: 96, Pitch: 64, Velocity: 100},
		}},
		{"C4 _ cc1=1 cc1=2 _", []clipseq.Note{
			{Kind: clipseq.NoteKindNote, At: 0, Length: 480, Pitch: 60, Velocity: 100},
			{Kind: clipseq.NoteKindControl, At: 192, Controller: 1, Value: 1},
			{Kind: clipseq.NoteKindControl, At: 288, Controller: 1, Value: 2},
		}},
	} {
		p := &clipseq.Pattern{Tokens: mustTokens(t, c.tokens)}
		notes := slices.Collect(clipseq.Notes(p.Iterate(clipseq.DefaultScale, 0, 1)))
		if !slices.Equal(notes, c.want) {
			t.Errorf("%q: got notes\n%+v\nwant\n%+v", c.tokens, notes, c.want)
		}
	}
}

func TestSlotsPadding(t *testing.T) {
	s := clipseq.Slots[int]{1, 2}
	if v, ok := s.Get(5); !ok || v != 2 {
		t.Errorf("Get(5): got %v %v, want 2 true", v, ok)
	}
	if v, ok := s.Get(0); !ok || v != 1 {
		t.Errorf("Get(0): got %v %v, want 1 true", v, ok)
	}
	var empty clipseq.Slots[int]
	if _, ok := empty.Get(0); ok {
		t.Error("empty slots should not return a value")
	}
	if got := empty.GetOr(3, 9); got != 9 {
		t.Errorf("GetOr: got %v, want 9", got)
	}
}
