package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/vsariola/clipseq"
)

// AuditionKind tells what is being auditioned. A new audition replaces the
// running audition of the same kind.
type AuditionKind int

const (
	PatternAudition AuditionKind = iota
	TransformAudition
	ClipAudition
	SlotAudition
)

var auditionKindNames = []string{"pattern", "transform", "clip", "slot"}

func (k AuditionKind) String() string {
	if k < 0 || int(k) >= len(auditionKindNames) {
		return fmt.Sprintf("AuditionKind(%d)", int(k))
	}
	return auditionKindNames[k]
}

func ParseAuditionKind(s string) (AuditionKind, error) {
	if i := slices.Index(auditionKindNames, s); i >= 0 {
		return AuditionKind(i), nil
	}
	return 0, fmt.Errorf("unknown audition kind %q", s)
}

// AuditionPattern plays the pattern once on its audition instrument.
func (p *MultiPlayer) AuditionPattern(id clipseq.PatternID) error {
	pat, err := p.song.LookupPattern(id)
	if err != nil {
		return err
	}
	inst, err := p.auditionInstrument(pat)
	if err != nil {
		return err
	}
	c := clipseq.NewAuditionClip(clipseq.Clip{Patterns: clipseq.Slots[clipseq.PatternID]{id}})
	return p.audition(PatternAudition, c, []clipseq.InstrumentID{inst})
}

// AuditionTransform plays the transform's audition pattern once through the
// transform.
func (p *MultiPlayer) AuditionTransform(id clipseq.TransformID) error {
	t, err := p.song.LookupTransform(id)
	if err != nil {
		return err
	}
	if t.AuditionPattern == "" {
		return fmt.Errorf("transform %q has no audition pattern: %w", id, clipseq.ErrUnknownReference)
	}
	pat, err := p.song.LookupPattern(t.AuditionPattern)
	if err != nil {
		return err
	}
	inst, err := p.auditionInstrument(pat)
	if err != nil {
		return err
	}
	c := clipseq.NewAuditionClip(clipseq.Clip{
		Patterns:   clipseq.Slots[clipseq.PatternID]{pat.ID},
		Transforms: clipseq.Slots[[]clipseq.TransformID]{{id}},
	})
	return p.audition(TransformAudition, c, []clipseq.InstrumentID{inst})
}

// AuditionClip plays every slot of the clip once, on the instruments of its
// track but without preempting the track.
func (p *MultiPlayer) AuditionClip(id clipseq.ClipID) error {
	c, err := p.song.LookupClip(id)
	if err != nil {
		return err
	}
	t, err := p.song.LookupTrack(c.Track)
	if err != nil {
		return err
	}
	return p.audition(ClipAudition, clipseq.NewAuditionClip(*c), t.Instruments)
}

// AuditionClipSlot plays one slot of the clip once.
func (p *MultiPlayer) AuditionClipSlot(id clipseq.ClipID, slot int) error {
	c, err := p.song.LookupClip(id)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= c.NumSlots() {
		return &clipseq.UnknownReferenceError{Kind: "slot", ID: fmt.Sprintf("%s[%d]", id, slot)}
	}
	t, err := p.song.LookupTrack(c.Track)
	if err != nil {
		return err
	}
	one := clipseq.Clip{
		Patterns: clipseq.Slots[clipseq.PatternID]{c.Patterns[slot]},
		Rate:     c.Rate,
		Pool:     c.Pool,
	}
	if chain, ok := c.Transforms.Get(slot); ok {
		one.Transforms = clipseq.Slots[[]clipseq.TransformID]{chain}
	}
	if scale, ok := c.Scales.Get(slot); ok {
		one.Scales = clipseq.Slots[clipseq.ScaleID]{scale}
	}
	if shift, ok := c.TempoShifts.Get(slot); ok {
		one.TempoShifts = clipseq.Slots[float64]{shift}
	}
	return p.audition(SlotAudition, clipseq.NewAuditionClip(one), t.Instruments)
}

// auditionInstrument returns the pattern's audition instrument, or the first
// instrument of the song if it names none.
func (p *MultiPlayer) auditionInstrument(pat *clipseq.Pattern) (clipseq.InstrumentID, error) {
	if pat.AuditionInstrument != "" {
		if _, err := p.song.LookupInstrument(pat.AuditionInstrument); err != nil {
			return "", err
		}
		return pat.AuditionInstrument, nil
	}
	insts := p.song.Instruments()
	if len(insts) == 0 {
		return "", fmt.Errorf("pattern %q has no audition instrument: %w", pat.ID, clipseq.ErrUnknownReference)
	}
	return insts[0].ID, nil
}

// audition plays c on a new hidden track. Any audition of the same kind is
// cancelled first, releasing its notes.
func (p *MultiPlayer) audition(kind AuditionKind, c *clipseq.Clip, instruments []clipseq.InstrumentID) error {
	suffix := uuid.NewString()
	c.ID = clipseq.ClipID("audition-" + kind.String() + "-" + suffix)
	c.Track = clipseq.TrackID("audition-" + suffix)
	if err := p.song.ValidateClip(c); err != nil {
		return err
	}
	if old, ok := p.auditions[kind]; ok {
		p.cancelWhere(func(r *clipRun) bool { return r == old })
		p.log.Info("audition replaced", "kind", kind, "clip", old.clip.ID)
	}
	tr := newTrackRun(clipseq.NewAuditionTrack(c.Track, instruments...), p.outputsFor(instruments))
	p.tracks = append(p.tracks, tr)
	p.trackByID[c.Track] = tr
	r := &clipRun{clip: c, track: tr, state: Ready, audition: kind, isAudition: true}
	p.auditions[kind] = r
	p.dropIdleAuditionTracks()
	p.schedule(&launch{runs: []*clipRun{r}, reset: true})
	return nil
}

// dropIdleAuditionTracks forgets audition tracks that have nothing left to
// play and no clip waiting to start on them.
func (p *MultiPlayer) dropIdleAuditionTracks() {
	waiting := func(tr *trackRun) bool {
		for _, l := range p.pending {
			for _, r := range l.runs {
				if r.track == tr && r.state == Ready {
					return true
				}
			}
		}
		for _, r := range p.auditions {
			if r.track == tr {
				return true
			}
		}
		return false
	}
	p.tracks = slices.DeleteFunc(p.tracks, func(tr *trackRun) bool {
		if !tr.track.Hidden() || !tr.idle() || len(tr.sounding) > 0 || waiting(tr) {
			return false
		}
		delete(p.trackByID, tr.track.ID)
		return true
	})
}

func (p *MultiPlayer) auditionMsg(m AuditionMsg) error {
	switch m.Kind {
	case PatternAudition:
		return p.AuditionPattern(clipseq.PatternID(m.ID))
	case TransformAudition:
		return p.AuditionTransform(clipseq.TransformID(m.ID))
	case ClipAudition:
		return p.AuditionClip(clipseq.ClipID(m.ID))
	case SlotAudition:
		return p.AuditionClipSlot(clipseq.ClipID(m.ID), m.Slot)
	}
	return fmt.Errorf("unknown audition kind %v", m.Kind)
}
