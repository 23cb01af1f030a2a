package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/vsariola/clipseq"
	clipcmd "github.com/vsariola/clipseq/cmd"
	"github.com/vsariola/clipseq/engine"
	"github.com/vsariola/clipseq/report"
	"github.com/vsariola/clipseq/takes"
)

// defaultOfflineBars limits offline sessions that set no limit, so clips
// repeating forever still finish.
const defaultOfflineBars = 64

// session holds the flags shared by every command that plays something.
type session struct {
	offline  bool
	bars     int
	bpm      float64
	output   string
	report   bool
	template string
	save     bool
}

func (s *session) register(f *pflag.FlagSet, offlineFlag bool) {
	if offlineFlag {
		f.BoolVar(&s.offline, "offline", false, "play on a virtual clock into a recording instead of MIDI outputs")
	}
	f.IntVar(&s.bars, "bars", 0, "stop after this many bars (0 = when all clips end)")
	f.Float64Var(&s.bpm, "bpm", 0, "override the song tempo")
	f.StringVarP(&s.output, "output", "o", "", "write the recording to a standard MIDI file")
	f.BoolVar(&s.report, "report", false, "print a report of the recording")
	f.StringVar(&s.template, "template", "", "template file for --report")
	f.BoolVar(&s.save, "save", false, "save the recording as a take")
}

// run creates a player for song, lets launch start something on it and plays
// until everything has ended, the bar limit is reached or the user
// interrupts. The first interrupt stops playback, releasing sounding notes;
// a second one aborts.
func (s *session) run(ctx context.Context, song *clipseq.Song, scene string, launch func(p *engine.MultiPlayer) error) error {
	rec := &clipseq.Recording{BPM: song.BPM}
	opts := engine.Options{Logger: logger}
	var factory clipseq.SinkFactory
	if s.offline {
		opts = engine.NewVirtualTime().Options(opts)
		factory = rec.Sinks()
	} else {
		midi := clipcmd.NewMIDIContext(globalConfig.Routes, globalConfig.QueueLength)
		defer func() {
			if err := midi.Close(); err != nil {
				logger.Warn("closing MIDI outputs failed", "error", err)
			}
		}()
		if s.needsRecording() {
			factory = recordingTo(midi.Sinks(), rec)
		} else {
			factory = midi.Sinks()
		}
	}
	p, err := engine.NewMultiPlayer(song, factory, opts)
	if err != nil {
		return err
	}
	if s.bpm > 0 {
		if err := p.SetBPM(s.bpm); err != nil {
			return err
		}
	}
	if err := launch(p); err != nil {
		return err
	}

	limit := clipseq.Tick(s.bars) * p.BarTicks()
	if s.offline && limit <= 0 {
		limit = defaultOfflineBars * p.BarTicks()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !s.offline {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigs)
		go func() {
			select {
			case <-sigs:
				logger.Info("stopping, interrupt again to abort")
				p.RequestStop()
			case <-ctx.Done():
				return
			}
			select {
			case <-sigs:
				cancel()
			case <-ctx.Done():
			}
		}()
	}
	ticks, err := engine.Render(ctx, p, limit)
	if err != nil {
		p.Stop()
		return err
	}
	logger.Debug("session finished", "ticks", ticks, "events", len(rec.Events))
	if n := p.SinkErrors(); len(n) > 0 {
		logger.Warn("some events could not be delivered", "errors", n)
	}
	beatsPerBar := int(p.BarTicks() / clipseq.TicksPerBeat)
	return s.finish(ctx, song, scene, beatsPerBar, rec)
}

func (s *session) needsRecording() bool {
	return s.output != "" || s.report || s.save
}

func (s *session) finish(ctx context.Context, song *clipseq.Song, scene string, beatsPerBar int, rec *clipseq.Recording) error {
	if s.output != "" {
		if err := writeSMF(s.output, rec, beatsPerBar); err != nil {
			return err
		}
	}
	if s.report {
		if err := printReport(s.template, song.Name, beatsPerBar, rec); err != nil {
			return err
		}
	}
	if s.save {
		store, err := openTakes()
		if err != nil {
			return err
		}
		defer store.Close()
		take := takes.NewTake(song.Name, rec)
		take.Scene = scene
		take.BeatsPerBar = beatsPerBar
		if err := store.Save(ctx, take); err != nil {
			return fmt.Errorf("could not save take: %w", err)
		}
		fmt.Println(take.ID)
	}
	return nil
}

func writeSMF(path string, rec *clipseq.Recording, beatsPerBar int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %v: %w", path, err)
	}
	if err := rec.WriteSMF(f, beatsPerBar); err != nil {
		f.Close()
		return fmt.Errorf("could not write %v: %w", path, err)
	}
	return f.Close()
}

func printReport(template, title string, beatsPerBar int, rec *clipseq.Recording) error {
	var (
		r   *report.Renderer
		err error
	)
	if template != "" {
		r, err = report.NewFromFile(template)
	} else {
		r, err = report.New()
	}
	if err != nil {
		return err
	}
	return r.Render(os.Stdout, report.NewData("", title, beatsPerBar, rec))
}

func openTakes() (takes.Store, error) {
	if err := os.MkdirAll(globalConfig.TakesDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create takes directory %v: %w", globalConfig.TakesDir, err)
	}
	return takes.NewBadger(takes.BadgerOptions{Dir: globalConfig.TakesDir, Logger: logger})
}
