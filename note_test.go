package clipseq_test

import (
	"strings"
	"testing"

	"github.com/vsariola/clipseq"
)

func TestPitchNames(t *testing.T) {
	for _, c := range []struct {
		name  string
		pitch int
	}{
		{"C4", 60}, {"C#4", 61}, {"Bb2", 46}, {"C-1", 0}, {"G9", 127}, {"A3", 57},
	} {
		p, err := clipseq.ParsePitch(c.name)
		if err != nil {
			t.Errorf("ParsePitch(%q) failed: %v", c.name, err)
			continue
		}
		if p != c.pitch {
			t.Errorf("ParsePitch(%q): got %v, want %v", c.name, p, c.pitch)
		}
	}
	if got := clipseq.PitchName(61); got != "C#4" {
		t.Errorf("PitchName(61): got %q, want C#4", got)
	}
	for _, bad := range []string{"", "H4", "G#9", "C", "128"} {
		if _, err := clipseq.ParsePitch(bad); err == nil {
			t.Errorf("ParsePitch(%q) should fail", bad)
		}
	}
}

func TestScalePitch(t *testing.T) {
	s, err := clipseq.NewScale("c", 60, "major")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct{ degree, octave, pitch int }{
		{1, 0, 60}, {3, 0, 64}, {8, 0, 72}, {0, 0, 59}, {3, 1, 76}, {-6, 0, 48},
	} {
		if got := s.Pitch(c.degree, c.octave); got != c.pitch {
			t.Errorf("Pitch(%d, %d): got %v, want %v", c.degree, c.octave, got, c.pitch)
		}
	}
	if _, err := clipseq.NewScale("x", 60, "klingon"); err == nil {
		t.Error("unknown scale type should fail")
	}
}

func TestTokenSyntax(t *testing.T) {
	src := "1 3>1 2<2 C#4@90 cc74=20 - _ 5@127"
	toks, err := clipseq.ParseTokens(src)
	if err != nil {
		t.Fatalf("ParseTokens failed: %v", err)
	}
	if len(toks) != 8 {
		t.Fatalf("got %d tokens, want 8", len(toks))
	}
	if toks[1].Kind != clipseq.TokenDegree || toks[1].Degree != 3 || toks[1].Octave != 1 {
		t.Errorf("unexpected token %+v", toks[1])
	}
	if toks[3].Kind != clipseq.TokenPitch || toks[3].Pitch != 61 || toks[3].Velocity != 90 {
		t.Errorf("unexpected token %+v", toks[3])
	}
	if toks[4].Kind != clipseq.TokenControl || toks[4].Controller != 74 || toks[4].Value != 20 {
		t.Errorf("unexpected token %+v", toks[4])
	}
	var names []string
	for _, tok := range toks {
		names = append(names, tok.String())
	}
	if got := strings.Join(names, " "); got != src {
		t.Errorf("tokens print as %q, want %q", got, src)
	}
	for _, bad := range []string{"cc200=1", "cc1", "1@0", "1>x", "Q4"} {
		if _, err := clipseq.ParseToken(bad); err == nil {
			t.Errorf("ParseToken(%q) should fail", bad)
		}
	}
}
