package engine

import (
	"slices"

	"github.com/vsariola/clipseq"
)

type (
	// output is one instrument of a track and the sink it plays through.
	output struct {
		inst *clipseq.Instrument
		sink clipseq.Sink
	}

	soundKey struct {
		owner *clipRun
		pitch int
	}

	// trackRun is the dispatch state of a track: its queue of timed events,
	// the clip currently producing into it, and the notes that are sounding.
	trackRun struct {
		track    *clipseq.Track
		outputs  []output
		queue    eventQueue
		active   *clipRun
		sounding map[soundKey]int
		seq      uint64
	}
)

func newTrackRun(track *clipseq.Track, outputs []output) *trackRun {
	return &trackRun{track: track, outputs: outputs, sounding: map[soundKey]int{}}
}

func (t *trackRun) enqueue(e queued) {
	t.seq++
	e.seq = t.seq
	t.queue.push(e)
}

// idle reports whether the track has nothing left to play.
func (t *trackRun) idle() bool {
	return t.active == nil && len(t.queue) == 0
}

// forget drops the queued events of every clip run for which f is true and
// returns the notes those runs still have sounding, lowest pitch first.
func (t *trackRun) forget(f func(*clipRun) bool) []int {
	t.queue.removeIf(func(e *queued) bool { return f(e.owner) })
	var pitches []int
	for k, n := range t.sounding {
		if !f(k.owner) {
			continue
		}
		for range n {
			pitches = append(pitches, k.pitch)
		}
		delete(t.sounding, k)
	}
	slices.Sort(pitches)
	return pitches
}
