package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vsariola/clipseq"
	"github.com/vsariola/clipseq/report"
)

func testRecording() *clipseq.Recording {
	rec := &clipseq.Recording{BPM: 120}
	rec.Append(clipseq.Event{At: 0, Kind: clipseq.EventNoteOn, Instrument: "lead", Channel: 1, Pitch: 60, Velocity: 100})
	rec.Append(clipseq.Event{At: 24, Kind: clipseq.EventNoteOff, Instrument: "lead", Channel: 1, Pitch: 60})
	rec.Append(clipseq.Event{At: 384, Kind: clipseq.EventControl, Instrument: "lead", Channel: 1, Controller: 74, Value: 64})
	return rec
}

func TestDefaultTemplate(t *testing.T) {
	r, err := report.New()
	if err != nil {
		t.Fatalf("could not create renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, report.NewData("", "demo", 4, testRecording())); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"demo", "3 events", "C4 vel 100", "Note On", "Note Off", "cc74=64", "[lead]", "2:0.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%v", want, out)
		}
	}
}

func TestCustomTemplate(t *testing.T) {
	r, err := report.NewFromText("custom", `{{range .Events}}{{pitch .Pitch}}@{{beats .At}} {{end}}{{upper .Song}}`)
	if err != nil {
		t.Fatalf("could not create renderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, report.NewData("", "demo", 4, testRecording())); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got, want := buf.String(), "C4@0 C4@0.25 C-1@4 DEMO"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestData(t *testing.T) {
	d := report.NewData("t", "s", 3, testRecording())
	if got := d.Events[2].Bar; got != 1 {
		t.Errorf("bar of tick 384 in 3/4: got %v, want 1", got)
	}
	if got := d.Events[2].Beat; got != 1 {
		t.Errorf("beat of tick 384 in 3/4: got %v, want 1", got)
	}
	if got := d.Events[1].Seconds; got != 0.125 {
		t.Errorf("seconds of tick 24 at 120 bpm: got %v, want 0.125", got)
	}
	if d.Counts["note_on"] != 1 || d.Counts["control"] != 1 {
		t.Errorf("unexpected counts %v", d.Counts)
	}
}

func TestParseError(t *testing.T) {
	if _, err := report.NewFromText("bad", "{{.Events"); err == nil {
		t.Error("expected an error for an unterminated action")
	}
}
