package report

import (
	_ "embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vsariola/clipseq"
)

//go:embed default.tmpl
var defaultTemplate string

type (
	// Renderer renders recordings as text with a template. Besides the sprig
	// functions, templates can use pitch, beats, seconds and kind.
	Renderer struct {
		Template *template.Template
	}

	// Data is what a template is executed with.
	Data struct {
		Title       string
		Song        string
		BPM         float64
		BeatsPerBar int
		Recording   *clipseq.Recording
		Events      []Row
		Length      clipseq.Tick
		Seconds     float64
		Counts      map[string]int
	}

	// Row is an event with its position in bars, beats and seconds.
	Row struct {
		clipseq.Event
		Bar     int
		Beat    float64 // within the bar, 0-based
		Seconds float64
	}
)

var title = cases.Title(language.English)

func funcs() template.FuncMap {
	m := sprig.TxtFuncMap()
	m["pitch"] = clipseq.PitchName
	m["beats"] = func(t clipseq.Tick) float64 { return t.Beats() }
	m["kind"] = func(k clipseq.EventKind) string {
		return title.String(strings.ReplaceAll(k.String(), "_", " "))
	}
	return m
}

// New returns a renderer using the default template, which lists every
// event.
func New() (*Renderer, error) {
	return NewFromText("default", defaultTemplate)
}

func NewFromText(name, text string) (*Renderer, error) {
	tmpl, err := template.New(name).Funcs(funcs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf(`could not parse template "%v": %v`, name, err)
	}
	return &Renderer{Template: tmpl}, nil
}

// NewFromFile returns a renderer using the template in path.
func NewFromFile(path string) (*Renderer, error) {
	tmpl, err := template.New(filepath.Base(path)).Funcs(funcs()).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf(`could not create template from "%v": %v`, path, err)
	}
	return &Renderer{Template: tmpl}, nil
}

// NewData lays out rec for a template.
func NewData(title, song string, beatsPerBar int, rec *clipseq.Recording) *Data {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	bar := clipseq.Tick(beatsPerBar) * clipseq.TicksPerBeat
	d := &Data{
		Title:       title,
		Song:        song,
		BPM:         rec.BPM,
		BeatsPerBar: beatsPerBar,
		Recording:   rec,
		Length:      rec.Length(),
		Seconds:     rec.Seconds(rec.Length()),
		Counts:      map[string]int{},
	}
	for _, e := range rec.Events {
		d.Events = append(d.Events, Row{
			Event:   e,
			Bar:     int(e.At / bar),
			Beat:    (e.At % bar).Beats(),
			Seconds: rec.Seconds(e.At),
		})
		d.Counts[e.Kind.String()]++
	}
	return d
}

// Render executes the template with data and writes the result to w.
func (r *Renderer) Render(w io.Writer, data *Data) error {
	if err := r.Template.Execute(w, data); err != nil {
		return fmt.Errorf(`could not execute template "%v": %v`, r.Template.Name(), err)
	}
	return nil
}
