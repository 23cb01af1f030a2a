package clipseq

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// SongDoc is the YAML form of a Song. Entities refer to each other by id
	// and may appear in any order.
	SongDoc struct {
		Name        string          `yaml:"name,omitempty"`
		BPM         float64         `yaml:"bpm"`
		BeatsPerBar int             `yaml:"beats_per_bar,omitempty"`
		Scale       string          `yaml:"scale,omitempty"`
		Scales      []ScaleDoc      `yaml:"scales,omitempty"`
		Instruments []InstrumentDoc `yaml:"instruments,omitempty"`
		Pools       []PoolDoc       `yaml:"pools,omitempty"`
		Patterns    []PatternDoc    `yaml:"patterns,omitempty"`
		Transforms  []TransformDoc  `yaml:"transforms,omitempty"`
		Tracks      []TrackDoc      `yaml:"tracks,omitempty"`
		Clips       []ClipDoc       `yaml:"clips,omitempty"`
		Scenes      []SceneDoc      `yaml:"scenes,omitempty"`
	}

	// ScaleDoc names either a scale type or explicit intervals.
	ScaleDoc struct {
		ID        string     `yaml:"id"`
		Root      PitchValue `yaml:"root"`
		Type      string     `yaml:"type,omitempty"`
		Intervals []int      `yaml:"intervals,omitempty,flow"`
	}

	InstrumentDoc struct {
		ID        string `yaml:"id"`
		Device    string `yaml:"device,omitempty"`
		Channel   int    `yaml:"channel,omitempty"`
		MinOctave int    `yaml:"min_octave,omitempty"`
		MaxOctave int    `yaml:"max_octave,omitempty"`
		Velocity  int    `yaml:"velocity,omitempty"`
		Muted     bool   `yaml:"muted,omitempty"`
	}

	PoolDoc struct {
		ID     string    `yaml:"id"`
		Kind   string    `yaml:"kind,omitempty"`
		Seed   uint64    `yaml:"seed,omitempty"`
		Values []float64 `yaml:"values,omitempty,flow"`
	}

	PatternDoc struct {
		ID                 string    `yaml:"id"`
		Rate               float64   `yaml:"rate,omitempty"`
		Tokens             TokenList `yaml:"tokens"`
		AuditionInstrument string    `yaml:"audition_instrument,omitempty"`
	}

	TransformDoc struct {
		ID              string  `yaml:"id"`
		Kind            string  `yaml:"kind"`
		Values          []int   `yaml:"values,omitempty,flow"`
		Amount          float64 `yaml:"amount,omitempty"`
		Probability     float64 `yaml:"probability,omitempty"`
		Descending      bool    `yaml:"descending,omitempty"`
		Pool            string  `yaml:"pool,omitempty"`
		AuditionPattern string  `yaml:"audition_pattern,omitempty"`
	}

	TrackDoc struct {
		ID          string   `yaml:"id"`
		Instruments []string `yaml:"instruments,flow"`
		Muted       bool     `yaml:"muted,omitempty"`
	}

	ClipDoc struct {
		ID               string    `yaml:"id"`
		Track            string    `yaml:"track"`
		Patterns         []string  `yaml:"patterns,flow"`
		Transforms       ChainList `yaml:"transforms,omitempty"`
		Scales           []string  `yaml:"scales,omitempty,flow"`
		TempoShifts      []float64 `yaml:"tempo_shifts,omitempty,flow"`
		Rate             float64   `yaml:"rate,omitempty"`
		Repeat           int       `yaml:"repeat,omitempty"`
		AutoSceneAdvance bool      `yaml:"auto_scene_advance,omitempty"`
		Pool             string    `yaml:"pool,omitempty"`
	}

	SceneDoc struct {
		ID    string   `yaml:"id"`
		Clips []string `yaml:"clips,flow"`
		Tempo float64  `yaml:"tempo,omitempty"`
	}

	// PitchValue is a MIDI pitch written either as a number or as a name
	// like "C4".
	PitchValue int

	// TokenList is a pattern body, written either as one string of space
	// separated tokens or as a list of tokens.
	TokenList []Token

	// ChainList holds one transform chain per clip slot. A single scalar is
	// one slot with a one-transform chain; in a list, each element is a slot
	// and may itself be a scalar or a list.
	ChainList [][]string
)

func (p *PitchValue) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParsePitch(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*p = PitchValue(v)
	return nil
}

func (l *TokenList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		toks, err := ParseTokens(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		*l = toks
	case yaml.SequenceNode:
		toks := make([]Token, 0, len(n.Content))
		for _, c := range n.Content {
			t, err := ParseToken(c.Value)
			if err != nil {
				return fmt.Errorf("line %d: %w", c.Line, err)
			}
			toks = append(toks, t)
		}
		*l = toks
	default:
		return fmt.Errorf("line %d: tokens must be a string or a list", n.Line)
	}
	return nil
}

func (l TokenList) MarshalYAML() (any, error) {
	s := ""
	for i, t := range l {
		if i > 0 {
			s += " "
		}
		s += t.String()
	}
	return s, nil
}

func (c *ChainList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*c = ChainList{{n.Value}}
		return nil
	case yaml.SequenceNode:
		ret := make(ChainList, 0, len(n.Content))
		for _, e := range n.Content {
			switch e.Kind {
			case yaml.ScalarNode:
				ret = append(ret, []string{e.Value})
			case yaml.SequenceNode:
				var chain []string
				if err := e.Decode(&chain); err != nil {
					return err
				}
				ret = append(ret, chain)
			default:
				return fmt.Errorf("line %d: a transform chain must be a name or a list of names", e.Line)
			}
		}
		*c = ret
		return nil
	}
	return fmt.Errorf("line %d: transforms must be a name or a list", n.Line)
}

// ParseSong decodes a YAML song document and returns the validated Song.
func ParseSong(data []byte) (*Song, error) {
	var doc SongDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSong, err)
	}
	return doc.Song()
}

// LoadSong reads and parses a YAML song document from path.
func LoadSong(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read song %v: %w", path, err)
	}
	s, err := ParseSong(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse song %v: %w", path, err)
	}
	return s, nil
}

// Song builds and validates the Song described by the document.
func (d *SongDoc) Song() (*Song, error) {
	s := NewSong(d.Name, d.BPM)
	if d.BeatsPerBar > 0 {
		s.BeatsPerBar = d.BeatsPerBar
	}
	s.DefaultScale = ScaleID(d.Scale)
	for _, sd := range d.Scales {
		sc := &Scale{ID: ScaleID(sd.ID), Root: int(sd.Root), Intervals: sd.Intervals}
		if sd.Type != "" {
			var err error
			if sc, err = NewScale(ScaleID(sd.ID), int(sd.Root), sd.Type); err != nil {
				return nil, fmt.Errorf("%w: scale %q: %v", ErrInvalidSong, sd.ID, err)
			}
		}
		if err := s.AddScale(sc); err != nil {
			return nil, err
		}
	}
	for _, id := range d.Instruments {
		i := &Instrument{
			ID:        InstrumentID(id.ID),
			Device:    id.Device,
			Channel:   id.Channel,
			MinOctave: id.MinOctave,
			MaxOctave: id.MaxOctave,
			Velocity:  id.Velocity,
			Muted:     id.Muted,
		}
		if err := s.AddInstrument(i); err != nil {
			return nil, err
		}
	}
	for _, pd := range d.Pools {
		kind, err := ParsePoolKind(pd.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: pool %q: %v", ErrInvalidSong, pd.ID, err)
		}
		if err := s.AddPool(&PoolDef{ID: PoolID(pd.ID), Kind: kind, Seed: pd.Seed, Values: pd.Values}); err != nil {
			return nil, err
		}
	}
	for _, pd := range d.Patterns {
		p := &Pattern{
			ID:                 PatternID(pd.ID),
			Tokens:             pd.Tokens,
			Rate:               pd.Rate,
			AuditionInstrument: InstrumentID(pd.AuditionInstrument),
		}
		if err := s.AddPattern(p); err != nil {
			return nil, err
		}
	}
	for _, td := range d.Transforms {
		kind, err := ParseTransformKind(td.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: transform %q: %v", ErrInvalidSong, td.ID, err)
		}
		t := &Transform{
			ID:              TransformID(td.ID),
			Kind:            kind,
			Values:          td.Values,
			Amount:          td.Amount,
			Probability:     td.Probability,
			Descending:      td.Descending,
			Pool:            PoolID(td.Pool),
			AuditionPattern: PatternID(td.AuditionPattern),
		}
		if err := s.AddTransform(t); err != nil {
			return nil, err
		}
	}
	for _, td := range d.Tracks {
		t := &Track{ID: TrackID(td.ID), Muted: td.Muted, Instruments: ids[InstrumentID](td.Instruments)}
		if err := s.AddTrack(t); err != nil {
			return nil, err
		}
	}
	for _, cd := range d.Clips {
		c := &Clip{
			ID:               ClipID(cd.ID),
			Track:            TrackID(cd.Track),
			Patterns:         ids[PatternID](cd.Patterns),
			Scales:           ids[ScaleID](cd.Scales),
			TempoShifts:      cd.TempoShifts,
			Rate:             cd.Rate,
			Repeat:           cd.Repeat,
			AutoSceneAdvance: cd.AutoSceneAdvance,
			Pool:             PoolID(cd.Pool),
		}
		for _, chain := range cd.Transforms {
			c.Transforms = append(c.Transforms, ids[TransformID](chain))
		}
		if err := s.AddClip(c); err != nil {
			return nil, err
		}
	}
	for _, sd := range d.Scenes {
		if err := s.AddScene(&Scene{ID: SceneID(sd.ID), Clips: ids[ClipID](sd.Clips), Tempo: sd.Tempo}); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func ids[K ~string](s []string) []K {
	if s == nil {
		return nil
	}
	ret := make([]K, len(s))
	for i, v := range s {
		ret[i] = K(v)
	}
	return ret
}
