package engine_test

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/engine"
)

const auditionSong = `
bpm: 120
instruments: [{id: lead}, {id: keys, channel: 1}]
pools: [{id: dice, seed: 3}]
patterns:
  - {id: p1, tokens: "C4 _ _ _", audition_instrument: keys}
  - {id: p2, tokens: "E4 G4"}
  - {id: hold, tokens: "C4 _ _ _ _ _ _ _"}
  - {id: one, tokens: "C4"}
transforms:
  - {id: major, kind: chord_expand, values: [0, 4, 7], audition_pattern: one}
  - {id: bare, kind: map_octave, values: [1]}
  - {id: loose, kind: humanize_velocity, amount: 30, pool: dice, audition_pattern: p2}
tracks: [{id: t, instruments: [lead]}]
clips:
  - {id: x, track: t, patterns: [hold], repeat: 1}
  - {id: y, track: t, patterns: [p2], repeat: 1}
  - {id: two, track: t, patterns: [p1, one], tempo_shifts: [0, 60], repeat: 3}
`

func TestAuditionReplacedBeforeStart(t *testing.T) {
	var log strings.Builder
	h := newHarness(t, auditionSong, engine.Options{Logger: slog.New(slog.NewTextHandler(&log, nil))})
	if err := h.p.AuditionPattern("p1"); err != nil {
		t.Fatal(err)
	}
	if err := h.p.AuditionPattern("p2"); err != nil {
		t.Fatal(err)
	}
	h.render(t, 0)
	checkEvents(t, h.events(), []string{"0 note_on E4", "96 note_off E4", "96 note_on G4", "192 note_off G4"})
	if !strings.Contains(log.String(), "audition replaced") {
		t.Error("replacing an audition should be logged")
	}
	for _, e := range h.rec.Events {
		if e.Instrument != "lead" {
			t.Errorf("p2 names no audition instrument and should play on the first one, got %v", e.Instrument)
		}
	}
}

func TestAuditionReplacedWhileSounding(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	if err := h.p.AuditionPattern("p1"); err != nil {
		t.Fatal(err)
	}
	h.advanceTo(t, 9)
	if err := h.p.AuditionPattern("p2"); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, h.events("keys"), []string{"0 note_on C4", "9 note_off C4"})
	h.render(t, 0)
	checkEvents(t, h.events("lead"), []string{"384 note_on E4", "480 note_off E4", "480 note_on G4", "576 note_off G4"})
	if len(h.rec.Unreleased()) > 0 {
		t.Errorf("unreleased notes: %v", h.rec.Unreleased())
	}
}

func TestAuditionIsHidden(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	if err := h.p.AuditionPattern("p2"); err != nil {
		t.Fatal(err)
	}
	active := h.p.ActiveClips()
	if len(active) != 1 {
		t.Fatalf("active clips: %v", active)
	}
	if !active[0].Hidden || !strings.HasPrefix(string(active[0].Clip), "audition-pattern-") {
		t.Errorf("audition clip should be hidden, got %+v", active[0])
	}
	if _, ok := h.song.Clip(active[0].Clip); ok {
		t.Error("audition clips must not be added to the song")
	}
	if err := h.p.RemoveClipsWithTrack(active[0].Track); !errors.Is(err, clipseq.ErrUnknownReference) {
		t.Errorf("hidden tracks cannot be removed by id, got %v", err)
	}
}

func TestAuditionClipDoesNotPreempt(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	if err := h.p.AddClips("x"); err != nil {
		t.Fatal(err)
	}
	h.advanceTo(t, 10)
	if err := h.p.AuditionClip("y"); err != nil {
		t.Fatal(err)
	}
	h.render(t, 0)
	checkEvents(t, h.events(), []string{
		"0 note_on C4",
		"384 note_on E4", "480 note_off E4", "480 note_on G4", "576 note_off G4",
		"768 note_off C4",
	})
}

func TestAuditionTransform(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	if err := h.p.AuditionTransform("major"); err != nil {
		t.Fatal(err)
	}
	h.render(t, 0)
	checkEvents(t, h.events(), []string{
		"0 note_on C4", "0 note_on E4", "0 note_on G4",
		"96 note_off C4", "96 note_off E4", "96 note_off G4",
	})
	if err := h.p.AuditionTransform("bare"); !errors.Is(err, clipseq.ErrUnknownReference) {
		t.Errorf("a transform without an audition pattern: got %v", err)
	}
}

func TestAuditionClipSlot(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	if err := h.p.AuditionClipSlot("two", 1); err != nil {
		t.Fatal(err)
	}
	h.render(t, 0)
	checkEvents(t, h.events(), []string{"0 note_on C4", "96 note_off C4"})
	// the slot keeps its tempo shift: one beat at 180 bpm
	if got, want := h.vt.Elapsed(), 333333333*time.Nanosecond; got != want {
		t.Errorf("elapsed %v, want %v", got, want)
	}
}

func TestAuditionMessages(t *testing.T) {
	b := engine.NewBroker()
	h := newHarness(t, auditionSong, engine.Options{Broker: b})
	kind, err := engine.ParseAuditionKind("slot")
	if err != nil {
		t.Fatal(err)
	}
	b.ToPlayer <- engine.AuditionMsg{Kind: kind, ID: "two", Slot: 5}
	b.ToPlayer <- engine.AuditionMsg{Kind: engine.PatternAudition, ID: "p2"}
	if err := h.p.Advance(t.Context()); err != nil {
		t.Fatal(err)
	}
	h.render(t, 0)
	checkEvents(t, h.events(), []string{"0 note_on E4", "96 note_off E4", "96 note_on G4", "192 note_off G4"})
	var failed error
	for len(b.FromPlayer) > 0 {
		if m, ok := (<-b.FromPlayer).(engine.ErrorMsg); ok {
			failed = m.Err
		}
	}
	if !errors.Is(failed, clipseq.ErrUnknownReference) {
		t.Errorf("auditioning a missing slot should report an unknown reference, got %v", failed)
	}
	if _, err := engine.ParseAuditionKind("song"); err == nil {
		t.Error("expected an error for an unknown audition kind")
	}
}

func TestAuditionRepeatsTheSameStream(t *testing.T) {
	h := newHarness(t, auditionSong, engine.Options{})
	for name, start := range map[string]func() error{
		"pattern":   func() error { return h.p.AuditionPattern("p1") },
		"transform": func() error { return h.p.AuditionTransform("loose") },
	} {
		var runs [3][]string
		for i := range runs {
			h.rec.Events = nil
			if err := start(); err != nil {
				t.Fatal(err)
			}
			h.render(t, 0)
			if len(h.rec.Events) == 0 {
				t.Fatalf("%s: audition played nothing", name)
			}
			first := h.rec.Events[0].At
			for _, e := range h.rec.Events {
				runs[i] = append(runs[i], fmt.Sprintf("+%d %v %s vel %d", e.At-first, e.Kind, clipseq.PitchName(e.Pitch), e.Velocity))
			}
			// consume pool values between auditions
			h.p.Pools().Get("dice").Float()
		}
		for i := 1; i < len(runs); i++ {
			checkEvents(t, runs[i], runs[0])
		}
	}
}
