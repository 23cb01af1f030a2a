package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vsariola/clipseq"
)

func TestListSong(t *testing.T) {
	song, err := loadSong("../../../testdata/demo.yml")
	if err != nil {
		t.Fatalf("could not load song: %v", err)
	}
	var buf bytes.Buffer
	if err := listSong(&buf, song); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"demo", "Instruments", "lead", "arp1", "track melody, 2 slots, 2x", "forever", "riff1", "@ 100 bpm"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%v", want, out)
		}
	}
}

func TestPickScene(t *testing.T) {
	song, err := loadSong("../../../testdata/demo.yml")
	if err != nil {
		t.Fatalf("could not load song: %v", err)
	}
	if got, _ := pickScene(song, "", nil); got != "intro" {
		t.Errorf("default scene: got %q, want intro", got)
	}
	if got, _ := pickScene(song, "", []string{"riff1"}); got != "" {
		t.Errorf("scene with clips: got %q, want none", got)
	}
	if _, err := pickScene(clipseq.NewSong("empty", 120), "", nil); err == nil {
		t.Error("expected an error for a song without scenes")
	}
}

func TestRecordingTo(t *testing.T) {
	rec := &clipseq.Recording{}
	f := recordingTo(clipseq.NullSinks, rec)
	s, err := f(&clipseq.Instrument{ID: "lead"})
	if err != nil {
		t.Fatal(err)
	}
	s.NoteOn(60, 100, 0, 0)
	s.NoteOff(60, 0, 24)
	if ts, ok := s.(clipseq.TempoSink); !ok {
		t.Error("tee sink should pass tempo changes to the recording")
	} else {
		ts.Tempo(90, 0)
	}
	if len(rec.Events) != 2 || rec.Events[0].Instrument != "lead" {
		t.Errorf("unexpected recording %+v", rec.Events)
	}
	if rec.BPM != 90 {
		t.Errorf("bpm: got %v, want 90", rec.BPM)
	}
}
