package takes_test

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/takes"
)

func stores(t *testing.T) map[string]takes.Store {
	t.Helper()
	b, err := takes.NewBadger(takes.BadgerOptions{
		InMemory: true,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("could not open badger: %v", err)
	}
	return map[string]takes.Store{"memory": takes.NewMemory(), "badger": b}
}

func take(song string, created time.Time) *takes.Take {
	rec := &clipseq.Recording{BPM: 120}
	rec.Append(clipseq.Event{At: 0, Kind: clipseq.EventNoteOn, Instrument: "lead", Pitch: 60, Velocity: 100})
	rec.Append(clipseq.Event{At: 96, Kind: clipseq.EventNoteOff, Instrument: "lead", Pitch: 60})
	rec.SetTempo(90, 48)
	t := takes.NewTake(song, rec)
	t.Created = created
	t.BeatsPerBar = 3
	return t
}

func TestStores(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			ctx := t.Context()
			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			newer, older := take("b", base.Add(time.Hour)), take("a", base)
			for _, tk := range []*takes.Take{newer, older} {
				if err := s.Save(ctx, tk); err != nil {
					t.Fatal(err)
				}
			}
			got, err := s.Get(ctx, older.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.Song != "a" || !got.Created.Equal(base) || got.BeatsPerBar != 3 {
				t.Errorf("got take %+v", got)
			}
			if !slices.Equal(got.Recording.Events, older.Recording.Events) {
				t.Errorf("events: got %v, want %v", got.Recording.Events, older.Recording.Events)
			}
			if !slices.Equal(got.Recording.Tempo, []clipseq.TempoChange{{At: 48, BPM: 90}}) || got.Recording.BPM != 120 {
				t.Errorf("tempo map: got %v @ %v", got.Recording.Tempo, got.Recording.BPM)
			}
			list, err := takes.Collect(s.List(ctx))
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 2 || list[0].ID != older.ID || list[1].ID != newer.ID {
				t.Errorf("takes should be listed oldest first, got %v", list)
			}
			if err := s.Delete(ctx, older.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, older.ID); !errors.Is(err, takes.ErrNotFound) {
				t.Errorf("get after delete: got %v", err)
			}
			if err := s.Delete(ctx, older.ID); err != nil {
				t.Errorf("deleting a missing take: %v", err)
			}
			if err := s.Save(ctx, &takes.Take{}); err == nil {
				t.Error("a take without id should not be saved")
			}
		})
	}
}

func TestNewTakeIDs(t *testing.T) {
	rec := &clipseq.Recording{}
	a, b := takes.NewTake("s", rec), takes.NewTake("s", rec)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("takes should get unique ids, got %q and %q", a.ID, b.ID)
	}
}
