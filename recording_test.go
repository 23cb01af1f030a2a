package clipseq_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/vsariola/clipseq"
)

func testRecording() *clipseq.Recording {
	rec := &clipseq.Recording{}
	sinks := rec.Sinks()
	lead, _ := sinks(&clipseq.Instrument{ID: "lead"})
	bass, _ := sinks(&clipseq.Instrument{ID: "bass", Channel: 1})
	lead.(clipseq.TempoSink).Tempo(120, 0)
	bass.(clipseq.TempoSink).Tempo(120, 0)
	bass.ControlChange(74, 20, 1, 0)
	lead.NoteOn(60, 100, 0, 0)
	lead.NoteOff(60, 0, 48)
	bass.NoteOn(40, 80, 1, 96)
	bass.NoteOff(40, 1, 192)
	lead.(clipseq.TempoSink).Tempo(96, 384)
	bass.(clipseq.TempoSink).Tempo(96, 384)
	lead.NoteOn(64, 90, 0, 480)
	return rec
}

func TestRecordingTempoMap(t *testing.T) {
	rec := testRecording()
	if rec.BPM != 120 || len(rec.Tempo) != 1 || rec.Tempo[0] != (clipseq.TempoChange{At: 384, BPM: 96}) {
		t.Fatalf("tempo map: got %v %v", rec.BPM, rec.Tempo)
	}
	if got := rec.TempoAt(383); got != 120 {
		t.Errorf("tempo at 383: got %v", got)
	}
	if got := rec.Seconds(384); got != 2 {
		t.Errorf("seconds at 384: got %v, want 2", got)
	}
	if got := rec.Seconds(480); got != 2.625 {
		t.Errorf("seconds at 480: got %v, want 2.625", got)
	}
}

func TestRecordingUnreleased(t *testing.T) {
	rec := testRecording()
	open := rec.Unreleased()
	if len(open) != 1 || open[0].Pitch != 64 || open[0].At != 480 {
		t.Errorf("unreleased: got %v", open)
	}
	if rec.Count(clipseq.EventNoteOn) != 3 || rec.Count(clipseq.EventControl) != 1 {
		t.Errorf("counts: %v note ons, %v controls", rec.Count(clipseq.EventNoteOn), rec.Count(clipseq.EventControl))
	}
	if rec.Length() != 480 {
		t.Errorf("length: got %v, want 480", rec.Length())
	}
}

func TestRecordingSMF(t *testing.T) {
	rec := testRecording()
	var buf bytes.Buffer
	if err := rec.WriteSMF(&buf, 4); err != nil {
		t.Fatalf("WriteSMF failed: %v", err)
	}
	got, err := clipseq.ReadRecordingSMF(&buf)
	if err != nil {
		t.Fatalf("ReadRecordingSMF failed: %v", err)
	}
	if got.BPM != 120 || !slices.Equal(got.Tempo, rec.Tempo) {
		t.Errorf("tempo map: got %v %v, want %v %v", got.BPM, got.Tempo, rec.BPM, rec.Tempo)
	}
	want := []clipseq.Event{
		{At: 0, Kind: clipseq.EventControl, Channel: 1, Controller: 74, Value: 20},
		{At: 0, Kind: clipseq.EventNoteOn, Channel: 0, Pitch: 60, Velocity: 100},
		{At: 48, Kind: clipseq.EventNoteOff, Channel: 0, Pitch: 60},
		{At: 96, Kind: clipseq.EventNoteOn, Channel: 1, Pitch: 40, Velocity: 80},
		{At: 192, Kind: clipseq.EventNoteOff, Channel: 1, Pitch: 40},
		{At: 480, Kind: clipseq.EventNoteOn, Channel: 0, Pitch: 64, Velocity: 90},
	}
	if !slices.Equal(got.Events, want) {
		t.Errorf("events:\ngot  %v\nwant %v", got.Events, want)
	}
}
