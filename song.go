package clipseq

import (
	"fmt"
	"slices"
)

type (
	// Song owns every definitional entity by identifier and is the lookup
	// registry for the engine. Entities refer to each other only through ids,
	// so a Song can be built in any order and checked with Validate once it
	// is complete. Players borrow a Song and never modify it.
	Song struct {
		Name         string
		BPM          float64
		BeatsPerBar  int     // 0 means 4
		DefaultScale ScaleID // used by clips that name no scale

		scales      registry[ScaleID, *Scale]
		instruments registry[InstrumentID, *Instrument]
		pools       registry[PoolID, *PoolDef]
		patterns    registry[PatternID, *Pattern]
		transforms  registry[TransformID, *Transform]
		tracks      registry[TrackID, *Track]
		clips       registry[ClipID, *Clip]
		scenes      registry[SceneID, *Scene]
	}

	// Slot is a clip slot with every reference resolved.
	Slot struct {
		Index      int
		Pattern    *Pattern
		Transforms []*Transform
		Scale      *Scale
		TempoShift float64
	}

	// registry keeps entities both by id and in the order they were added.
	registry[K ~string, V any] struct {
		byID  map[K]V
		order []V
	}
)

func (r *registry[K, V]) add(kind string, id K, v V) error {
	if id == "" {
		return fmt.Errorf("%w: %s with empty id", ErrInvalidSong, kind)
	}
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: duplicate %s %q", ErrInvalidSong, kind, id)
	}
	if r.byID == nil {
		r.byID = make(map[K]V)
	}
	r.byID[id] = v
	r.order = append(r.order, v)
	return nil
}

func (r *registry[K, V]) get(id K) (V, bool) {
	v, ok := r.byID[id]
	return v, ok
}

func NewSong(name string, bpm float64) *Song {
	return &Song{Name: name, BPM: bpm, BeatsPerBar: 4}
}

func (s *Song) AddScale(v *Scale) error           { return s.scales.add("scale", v.ID, v) }
func (s *Song) AddInstrument(v *Instrument) error { return s.instruments.add("instrument", v.ID, v) }
func (s *Song) AddPool(v *PoolDef) error          { return s.pools.add("pool", v.ID, v) }
func (s *Song) AddPattern(v *Pattern) error       { return s.patterns.add("pattern", v.ID, v) }
func (s *Song) AddTransform(v *Transform) error   { return s.transforms.add("transform", v.ID, v) }
func (s *Song) AddTrack(v *Track) error           { return s.tracks.add("track", v.ID, v) }
func (s *Song) AddClip(v *Clip) error             { return s.clips.add("clip", v.ID, v) }

// AddScene adds a scene and sets the Scene back-reference of its clips that
// are already in the song.
func (s *Song) AddScene(v *Scene) error {
	if err := s.scenes.add("scene", v.ID, v); err != nil {
		return err
	}
	for _, id := range v.Clips {
		if c, ok := s.clips.get(id); ok && c.Scene == "" {
			c.Scene = v.ID
		}
	}
	return nil
}

func (s *Song) Scale(id ScaleID) (*Scale, bool)                { return s.scales.get(id) }
func (s *Song) Instrument(id InstrumentID) (*Instrument, bool) { return s.instruments.get(id) }
func (s *Song) Pool(id PoolID) (*PoolDef, bool)                { return s.pools.get(id) }
func (s *Song) Pattern(id PatternID) (*Pattern, bool)          { return s.patterns.get(id) }
func (s *Song) Transform(id TransformID) (*Transform, bool)    { return s.transforms.get(id) }
func (s *Song) Track(id TrackID) (*Track, bool)                { return s.tracks.get(id) }
func (s *Song) Clip(id ClipID) (*Clip, bool)                   { return s.clips.get(id) }
func (s *Song) Scene(id SceneID) (*Scene, bool)                { return s.scenes.get(id) }

func (s *Song) Scales() []*Scale           { return slices.Clone(s.scales.order) }
func (s *Song) Instruments() []*Instrument { return slices.Clone(s.instruments.order) }
func (s *Song) Pools() []*PoolDef          { return slices.Clone(s.pools.order) }
func (s *Song) Patterns() []*Pattern       { return slices.Clone(s.patterns.order) }
func (s *Song) Transforms() []*Transform   { return slices.Clone(s.transforms.order) }
func (s *Song) Tracks() []*Track           { return slices.Clone(s.tracks.order) }
func (s *Song) Clips() []*Clip             { return slices.Clone(s.clips.order) }
func (s *Song) Scenes() []*Scene           { return slices.Clone(s.scenes.order) }

// LookupPattern is Pattern returning an UnknownReferenceError on a miss.
func (s *Song) LookupPattern(id PatternID) (*Pattern, error) {
	if p, ok := s.patterns.get(id); ok {
		return p, nil
	}
	return nil, unknown("pattern", id)
}

func (s *Song) LookupTransform(id TransformID) (*Transform, error) {
	if t, ok := s.transforms.get(id); ok {
		return t, nil
	}
	return nil, unknown("transform", id)
}

func (s *Song) LookupClip(id ClipID) (*Clip, error) {
	if c, ok := s.clips.get(id); ok {
		return c, nil
	}
	return nil, unknown("clip", id)
}

func (s *Song) LookupScene(id SceneID) (*Scene, error) {
	if sc, ok := s.scenes.get(id); ok {
		return sc, nil
	}
	return nil, unknown("scene", id)
}

func (s *Song) LookupTrack(id TrackID) (*Track, error) {
	if t, ok := s.tracks.get(id); ok {
		return t, nil
	}
	return nil, unknown("track", id)
}

func (s *Song) LookupInstrument(id InstrumentID) (*Instrument, error) {
	if i, ok := s.instruments.get(id); ok {
		return i, nil
	}
	return nil, unknown("instrument", id)
}

// LookupScale resolves a scale id. The empty id means the song's default
// scale, or DefaultScale if the song has none.
func (s *Song) LookupScale(id ScaleID) (*Scale, error) {
	if id == "" {
		id = s.DefaultScale
		if id == "" {
			return DefaultScale, nil
		}
	}
	if sc, ok := s.scales.get(id); ok {
		return sc, nil
	}
	return nil, unknown("scale", id)
}

// BarTicks returns the length of a bar in ticks.
func (s *Song) BarTicks() Tick {
	bpb := s.BeatsPerBar
	if bpb <= 0 {
		bpb = 4
	}
	return Tick(bpb) * TicksPerBeat
}

// NextScene returns the scene following id in song order. ok is false for
// the last scene and for unknown ids.
func (s *Song) NextScene(id SceneID) (*Scene, bool) {
	i := slices.IndexFunc(s.scenes.order, func(sc *Scene) bool { return sc.ID == id })
	if i < 0 || i+1 >= len(s.scenes.order) {
		return nil, false
	}
	return s.scenes.order[i+1], true
}

// ResolveSlot resolves every reference of slot index of c.
func (s *Song) ResolveSlot(c *Clip, index int) (Slot, error) {
	pid, ok := c.Patterns.Get(index)
	if !ok {
		return Slot{}, fmt.Errorf("%w: clip %q has no patterns", ErrInvalidSong, c.ID)
	}
	pat, err := s.LookupPattern(pid)
	if err != nil {
		return Slot{}, err
	}
	scale, err := s.LookupScale(c.Scales.GetOr(index, ""))
	if err != nil {
		return Slot{}, err
	}
	ids := c.Transforms.GetOr(index, nil)
	chain := make([]*Transform, 0, len(ids))
	for _, id := range ids {
		t, err := s.LookupTransform(id)
		if err != nil {
			return Slot{}, err
		}
		chain = append(chain, t)
	}
	return Slot{
		Index:      index,
		Pattern:    pat,
		Transforms: chain,
		Scale:      scale,
		TempoShift: c.TempoShifts.GetOr(index, 0),
	}, nil
}

// ValidateClip checks that every slot of c and its track resolve. Hidden
// clips skip the track check, as their tracks are not part of the song.
func (s *Song) ValidateClip(c *Clip) error {
	if len(c.Patterns) == 0 {
		return fmt.Errorf("%w: clip %q has no patterns", ErrInvalidSong, c.ID)
	}
	if !c.hidden {
		if _, err := s.LookupTrack(c.Track); err != nil {
			return err
		}
	}
	if c.Pool != "" {
		if _, ok := s.pools.get(c.Pool); !ok {
			return unknown("pool", c.Pool)
		}
	}
	for i := range max(len(c.Patterns), len(c.Transforms), len(c.Scales)) {
		if _, err := s.ResolveSlot(c, i); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the whole entity graph: every reference resolves, every
// tempo is valid and every instrument channel is in range.
func (s *Song) Validate() error {
	if err := ValidateBPM(s.BPM); err != nil {
		return err
	}
	if s.DefaultScale != "" {
		if _, err := s.LookupScale(s.DefaultScale); err != nil {
			return err
		}
	}
	for _, i := range s.instruments.order {
		if i.Channel < 0 || i.Channel > 15 {
			return fmt.Errorf("%w: instrument %q channel %d out of range 0..15", ErrInvalidSong, i.ID, i.Channel)
		}
	}
	for _, p := range s.patterns.order {
		if p.AuditionInstrument != "" {
			if _, err := s.LookupInstrument(p.AuditionInstrument); err != nil {
				return err
			}
		}
	}
	for _, t := range s.transforms.order {
		if t.AuditionPattern != "" {
			if _, err := s.LookupPattern(t.AuditionPattern); err != nil {
				return err
			}
		}
		if t.Pool != "" {
			if _, ok := s.pools.get(t.Pool); !ok {
				return unknown("pool", t.Pool)
			}
		}
	}
	for _, t := range s.tracks.order {
		for _, id := range t.Instruments {
			if _, err := s.LookupInstrument(id); err != nil {
				return err
			}
		}
	}
	for _, c := range s.clips.order {
		if err := s.ValidateClip(c); err != nil {
			return err
		}
	}
	for _, sc := range s.scenes.order {
		if sc.Tempo < 0 {
			return fmt.Errorf("%w: scene %q", ErrInvalidTempo, sc.ID)
		}
		for _, id := range sc.Clips {
			if _, err := s.LookupClip(id); err != nil {
				return err
			}
		}
	}
	return nil
}
