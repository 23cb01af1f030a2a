package clipseq

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind tells what a pattern token does when its step is played.
type TokenKind int

const (
	TokenRest    TokenKind = iota // silence for one step
	TokenDegree                   // scale degree, resolved with the slot's scale
	TokenPitch                    // explicit MIDI pitch
	TokenControl                  // controller change
	TokenTie                      // extends the previous note by one step
)

// DefaultVelocity is used for notes whose token gives no velocity.
const DefaultVelocity = 100

// Token is one step of a Pattern.
type Token struct {
	Kind       TokenKind
	Degree     int // TokenDegree: 1-based scale degree
	Octave     int // TokenDegree: octave offset
	Pitch      int // TokenPitch: MIDI pitch
	Velocity   int // 0 means DefaultVelocity
	Controller int // TokenControl
	Value      int // TokenControl
}

// Rest, Tie, Degree, Pitch and Control are shorthands for building tokens in
// code.
func Rest() Token                 { return Token{Kind: TokenRest} }
func Tie() Token                  { return Token{Kind: TokenTie} }
func Degree(d, octave int) Token  { return Token{Kind: TokenDegree, Degree: d, Octave: octave} }
func Pitch(p int) Token           { return Token{Kind: TokenPitch, Pitch: p} }
func Control(cc, value int) Token { return Token{Kind: TokenControl, Controller: cc, Value: value} }

// ParseToken parses the compact token syntax used in song documents:
//
//	-         rest
//	_         tie
//	3         scale degree 3
//	3>1 3<2   scale degree 3, one octave up / two octaves down
//	C4 F#3    explicit pitch
//	cc74=20   controller 74 set to 20
//
// Note tokens may end with @velocity, e.g. "5@90" or "C4@127".
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "-", ".":
		return Rest(), nil
	case "_":
		return Tie(), nil
	case "":
		return Token{}, fmt.Errorf("empty token")
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "cc"); ok {
		ctrl, val, found := strings.Cut(rest, "=")
		if !found {
			return Token{}, fmt.Errorf("invalid controller token %q", s)
		}
		c, err1 := strconv.Atoi(ctrl)
		v, err2 := strconv.Atoi(val)
		if err1 != nil || err2 != nil || c < 0 || c > 127 || v < 0 || v > 127 {
			return Token{}, fmt.Errorf("invalid controller token %q", s)
		}
		return Control(c, v), nil
	}
	velocity := 0
	if body, vel, found := strings.Cut(s, "@"); found {
		v, err := strconv.Atoi(vel)
		if err != nil || v < 1 || v > 127 {
			return Token{}, fmt.Errorf("invalid velocity in token %q", s)
		}
		velocity = v
		s = body
	}
	if s[0] >= '0' && s[0] <= '9' {
		degreeStr, octave := s, 0
		if i := strings.IndexAny(s, "<>"); i >= 0 {
			n, err := strconv.Atoi(s[i+1:])
			if err != nil {
				return Token{}, fmt.Errorf("invalid octave shift in token %q", s)
			}
			if s[i] == '<' {
				n = -n
			}
			degreeStr, octave = s[:i], n
		}
		d, err := strconv.Atoi(degreeStr)
		if err != nil {
			return Token{}, fmt.Errorf("invalid degree token %q", s)
		}
		t := Degree(d, octave)
		t.Velocity = velocity
		return t, nil
	}
	p, err := ParsePitch(s)
	if err != nil {
		return Token{}, err
	}
	t := Pitch(p)
	t.Velocity = velocity
	return t, nil
}

// ParseTokens parses a whitespace separated list of tokens.
func ParseTokens(s string) ([]Token, error) {
	fields := strings.Fields(s)
	ret := make([]Token, 0, len(fields))
	for i, f := range fields {
		t, err := ParseToken(f)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		ret = append(ret, t)
	}
	return ret, nil
}

func (t Token) String() string {
	var s string
	switch t.Kind {
	case TokenRest:
		return "-"
	case TokenTie:
		return "_"
	case TokenControl:
		return fmt.Sprintf("cc%d=%d", t.Controller, t.Value)
	case TokenDegree:
		s = strconv.Itoa(t.Degree)
		if t.Octave > 0 {
			s += ">" + strconv.Itoa(t.Octave)
		} else if t.Octave < 0 {
			s += "<" + strconv.Itoa(-t.Octave)
		}
	case TokenPitch:
		s = PitchName(t.Pitch)
	}
	if t.Velocity > 0 {
		s += "@" + strconv.Itoa(t.Velocity)
	}
	return s
}
