package engine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/vsariola/clipseq"
)

type (
	// MultiPlayer is the scheduler core. It owns the set of launched clips and
	// a dispatch queue per track, and is driven by calling Advance in a loop
	// until Stopped returns true:
	//
	//	for !p.Stopped() {
	//		if err := p.Advance(ctx); err != nil {
	//			return err
	//		}
	//	}
	//
	// All methods except RequestStop must be called from the goroutine that
	// calls Advance. Other goroutines control the player through a Broker.
	MultiPlayer struct {
		song  *clipseq.Song
		opts  Options
		log   *slog.Logger
		clock *Clock
		pools *clipseq.Pools
		bar   clipseq.Tick

		baseBPM   float64
		tempoSent float64

		outputs   map[clipseq.InstrumentID]output
		tracks    []*trackRun // song tracks in song order, then audition tracks
		trackByID map[clipseq.TrackID]*trackRun

		runs      []*clipRun // running and barriered clips, in activation order
		pending   []*launch
		auditions map[AuditionKind]*clipRun

		order    uint64
		entries  uint64
		prepared clipseq.Tick

		stopped       bool
		stopRequested atomic.Bool
		sinkErrors    map[clipseq.InstrumentID]int
	}

	// launch is a set of clips waiting for the bar they start at.
	launch struct {
		at    clipseq.Tick
		runs  []*clipRun
		scene *clipseq.Scene
		reset bool
	}
)

// NewMultiPlayer validates song and creates a sink for every instrument with
// factory. A nil factory discards everything.
func NewMultiPlayer(song *clipseq.Song, factory clipseq.SinkFactory, opts Options) (*MultiPlayer, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		factory = clipseq.NullSinks
	}
	p := &MultiPlayer{
		song:       song,
		opts:       opts,
		log:        opts.logger(),
		clock:      NewClock(opts.now()),
		pools:      clipseq.NewPools(song.Pools()),
		bar:        song.BarTicks(),
		baseBPM:    song.BPM,
		outputs:    map[clipseq.InstrumentID]output{},
		trackByID:  map[clipseq.TrackID]*trackRun{},
		auditions:  map[AuditionKind]*clipRun{},
		prepared:   -1,
		stopped:    true,
		sinkErrors: map[clipseq.InstrumentID]int{},
	}
	if opts.BeatsPerBar > 0 {
		p.bar = clipseq.Tick(opts.BeatsPerBar) * clipseq.TicksPerBeat
	}
	for _, inst := range song.Instruments() {
		sink, err := factory(inst)
		if err != nil {
			return nil, fmt.Errorf("could not create sink for instrument %q: %w", inst.ID, err)
		}
		p.outputs[inst.ID] = output{inst: inst, sink: sink}
	}
	for _, t := range song.Tracks() {
		tr := newTrackRun(t, p.outputsFor(t.Instruments))
		p.tracks = append(p.tracks, tr)
		p.trackByID[t.ID] = tr
	}
	return p, nil
}

func (p *MultiPlayer) outputsFor(ids []clipseq.InstrumentID) []output {
	ret := make([]output, 0, len(ids))
	for _, id := range ids {
		if o, ok := p.outputs[id]; ok {
			ret = append(ret, o)
		}
	}
	return ret
}

// Song returns the song being played.
func (p *MultiPlayer) Song() *clipseq.Song { return p.song }

// Clock returns the player's clock. It must not be modified.
func (p *MultiPlayer) Clock() *Clock { return p.clock }

// Pools returns the data pools of the player.
func (p *MultiPlayer) Pools() *clipseq.Pools { return p.pools }

// Stopped reports whether the player is idle: nothing is playing and nothing
// is waiting to be launched.
func (p *MultiPlayer) Stopped() bool { return p.stopped }

// BarTicks returns the bar length the player aligns launches to.
func (p *MultiPlayer) BarTicks() clipseq.Tick { return p.bar }

// SinkErrors returns how many dispatches failed, per instrument.
func (p *MultiPlayer) SinkErrors() map[clipseq.InstrumentID]int {
	return maps.Clone(p.sinkErrors)
}

// ActiveClips returns the launched clips that have not finished, waiting
// ones last.
func (p *MultiPlayer) ActiveClips() []ActiveClip {
	var ret []ActiveClip
	add := func(r *clipRun) {
		ret = append(ret, ActiveClip{
			Clip:   r.clip.ID,
			Track:  r.track.track.ID,
			State:  r.state,
			Slot:   r.slot,
			Pass:   r.pass,
			Hidden: r.clip.Hidden(),
		})
	}
	for _, r := range p.runs {
		add(r)
	}
	for _, l := range p.pending {
		for _, r := range l.runs {
			if r.state == Ready {
				add(r)
			}
		}
	}
	return ret
}

// SetBPM sets the base tempo. It takes effect at the tick after the next
// one that is committed, never in the middle of a tick.
func (p *MultiPlayer) SetBPM(bpm float64) error {
	if err := clipseq.ValidateBPM(bpm); err != nil {
		return err
	}
	p.baseBPM = bpm
	return nil
}

// ResetPools restarts every data pool at its initial state.
func (p *MultiPlayer) ResetPools() { p.pools.ResetAll() }

// AddScene launches every clip of the scene at the next bar boundary. Clips
// already playing on the same tracks are preempted there. The data pools are
// reset when the scene starts.
func (p *MultiPlayer) AddScene(id clipseq.SceneID) error {
	sc, err := p.song.LookupScene(id)
	if err != nil {
		return err
	}
	runs, err := p.newRuns(sc.Clips)
	if err != nil {
		return err
	}
	p.schedule(&launch{runs: runs, scene: sc, reset: true})
	return nil
}

// AddClips launches the clips at the next bar boundary, in the given order.
func (p *MultiPlayer) AddClips(ids ...clipseq.ClipID) error {
	runs, err := p.newRuns(ids)
	if err != nil {
		return err
	}
	p.schedule(&launch{runs: runs})
	return nil
}

// RemoveClipsWithTrack cancels the clip playing or waiting on the track and
// releases every note sounding on it.
func (p *MultiPlayer) RemoveClipsWithTrack(id clipseq.TrackID) error {
	tr, ok := p.trackByID[id]
	if !ok || tr.track.Hidden() {
		return &clipseq.UnknownReferenceError{Kind: "track", ID: string(id)}
	}
	p.cancelWhere(func(r *clipRun) bool { return r.track == tr })
	p.releaseAll(tr, p.releaseTick())
	return nil
}

// Stop cancels everything, releases every sounding note, flushes the sinks
// and leaves the player idle. Stop is idempotent.
func (p *MultiPlayer) Stop() {
	at := p.releaseTick()
	p.cancelWhere(func(*clipRun) bool { return true })
	for _, tr := range p.tracks {
		p.releaseAll(tr, at)
	}
	p.dropIdleAuditionTracks()
	p.flush(at)
	if !p.stopped {
		p.stopped = true
		p.log.Debug("playback stopped", "tick", at)
		p.status(StoppedMsg{At: at})
	}
}

// RequestStop asks the player to stop at the start of the next Advance. It
// is safe to call from any goroutine, including signal handlers.
func (p *MultiPlayer) RequestStop() { p.stopRequested.Store(true) }

// Run calls Advance until the player is stopped or ctx is cancelled.
func (p *MultiPlayer) Run(ctx context.Context) error {
	for !p.stopped {
		if err := p.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Advance plays one tick: it applies control messages, brings clips to the
// next tick (slot changes, launches, tempo), waits until the tick is due,
// commits it and dispatches every event due at it. It returns at once when
// the player is stopped, and only fails if ctx is cancelled while waiting.
func (p *MultiPlayer) Advance(ctx context.Context) error {
	p.processMessages()
	if p.stopRequested.Swap(false) {
		p.Stop()
	}
	if p.stopped {
		return nil
	}
	n := p.clock.Next()
	if n != p.prepared {
		p.prepare(n)
		p.prepared = n
	}
	d := p.clock.UntilNextTick()
	if d < 0 {
		p.log.Warn("clock stall", "tick", n, "late", -d)
		d = 0
	}
	if err := p.opts.sleep()(ctx, d); err != nil {
		return err
	}
	p.clock.Tick()
	p.drain(n)
	if p.idle() {
		p.dropIdleAuditionTracks()
		p.flush(n)
		p.stopped = true
		p.log.Debug("playback finished", "tick", n)
		p.status(StoppedMsg{At: n})
	}
	return nil
}

func (p *MultiPlayer) newRuns(ids []clipseq.ClipID) ([]*clipRun, error) {
	runs := make([]*clipRun, 0, len(ids))
	for _, id := range ids {
		c, err := p.song.LookupClip(id)
		if err != nil {
			return nil, err
		}
		if err := p.song.ValidateClip(c); err != nil {
			return nil, err
		}
		tr, ok := p.trackByID[c.Track]
		if !ok {
			return nil, &clipseq.UnknownReferenceError{Kind: "track", ID: string(c.Track)}
		}
		runs = append(runs, &clipRun{clip: c, track: tr, state: Ready})
	}
	return runs, nil
}

// schedule queues l for the first bar boundary that has not been prepared
// yet.
func (p *MultiPlayer) schedule(l *launch) {
	p.wake()
	from := p.clock.Next()
	if from == p.prepared {
		from++
	}
	l.at = clipseq.NextBoundary(from, p.bar)
	p.pending = append(p.pending, l)
	for _, r := range l.runs {
		p.emit(r, l.at)
	}
}

// wake restarts an idle player, moving the clock forward to the next bar so
// that a launch does not wait for a bar that nobody hears.
func (p *MultiPlayer) wake() {
	if !p.stopped {
		return
	}
	p.stopped = false
	p.tempoSent = 0
	p.prepared = -1
	if !p.clock.Started() {
		// baseBPM was validated by the song or by SetBPM
		_ = p.clock.Start(p.baseBPM)
		return
	}
	p.clock.Resume(clipseq.NextBoundary(p.clock.Next(), p.bar))
}

// prepare moves every clip to tick n before it is committed: clips change
// slots, due launches start and the tempo for n is settled.
func (p *MultiPlayer) prepare(n clipseq.Tick) {
	for _, r := range slices.Clone(p.runs) {
		p.step(r, n)
	}
	var due []*launch
	p.pending = slices.DeleteFunc(p.pending, func(l *launch) bool {
		if l.at <= n {
			due = append(due, l)
			return true
		}
		return false
	})
	for _, l := range due {
		p.start(l, n)
	}
	p.pruneRuns()
	p.updateTempo(n)
}

func (p *MultiPlayer) step(r *clipRun, n clipseq.Tick) {
	if r.state == Running && n >= r.slotEnd {
		if r.lastSlot() && !r.clip.AutoSceneAdvance {
			p.end(r, n)
			return
		}
		r.state = Barriered
		p.emit(r, n)
	}
	if r.state != Barriered || n%p.bar != 0 {
		return
	}
	if r.lastSlot() {
		p.end(r, n)
		p.advanceScene(r, n)
		return
	}
	r.slot++
	if r.slot >= r.clip.NumSlots() {
		r.slot = 0
		r.pass++
	}
	p.enterSlot(r, n)
}

func (p *MultiPlayer) start(l *launch, n clipseq.Tick) {
	if l.reset {
		p.pools.ResetAll()
	}
	if l.scene != nil {
		p.log.Debug("scene launched", "scene", l.scene.ID, "tick", n)
		if l.scene.Tempo > 0 {
			p.baseBPM = l.scene.Tempo
		}
	}
	for _, r := range l.runs {
		if r.state != Ready {
			continue
		}
		p.preempt(r.track, n)
		p.order++
		r.order = p.order
		r.slot, r.pass = 0, 0
		r.track.active = r
		p.runs = append(p.runs, r)
		p.enterSlot(r, n)
	}
}

// preempt cancels the clip on tr and releases everything still sounding on
// it, including notes of clips that already ended.
func (p *MultiPlayer) preempt(tr *trackRun, n clipseq.Tick) {
	if old := tr.active; old != nil {
		old.state = Cancelled
		tr.active = nil
		p.log.Debug("clip preempted", "clip", old.clip.ID, "track", tr.track.ID, "tick", n)
		p.emit(old, n)
		if old.isAudition && p.auditions[old.audition] == old {
			delete(p.auditions, old.audition)
		}
	}
	p.releaseAll(tr, p.releaseTick())
}

// enterSlot renders the whole current slot of r, starting at n, into the
// track queue.
func (p *MultiPlayer) enterSlot(r *clipRun, n clipseq.Tick) {
	slot, err := p.song.ResolveSlot(r.clip, r.slot)
	if err != nil {
		p.log.Warn("could not resolve clip slot", "clip", r.clip.ID, "slot", r.slot, "err", err)
		p.end(r, n)
		return
	}
	rate := r.clip.EffectiveRate(slot.Pattern)
	r.state = Running
	r.slotStart = n
	r.slotEnd = n + slot.Pattern.Duration(rate)
	r.shift = slot.TempoShift
	p.entries++
	r.entry = p.entries
	env := clipseq.Env{Scale: slot.Scale, Pools: p.pools, Pool: r.clip.Pool}
	steps := slot.Pattern.Iterate(slot.Scale, n, rate)
	for note := range clipseq.ApplyChain(slot.Transforms, env, clipseq.Notes(steps)) {
		at := max(note.At, n)
		switch note.Kind {
		case clipseq.NoteKindControl:
			r.track.enqueue(queued{at: at, kind: clipseq.EventControl, controller: note.Controller, value: note.Value, owner: r})
		default:
			r.track.enqueue(queued{at: at, kind: clipseq.EventNoteOn, pitch: note.Pitch, velocity: note.Velocity, owner: r})
			r.track.enqueue(queued{at: at + max(note.Length, 1), kind: clipseq.EventNoteOff, pitch: note.Pitch, owner: r})
		}
	}
	p.emit(r, n)
}

func (p *MultiPlayer) end(r *clipRun, n clipseq.Tick) {
	r.state = Ended
	if r.track.active == r {
		r.track.active = nil
	}
	if r.isAudition && p.auditions[r.audition] == r {
		delete(p.auditions, r.audition)
	}
	p.emit(r, n)
}

// advanceScene launches the scene after the one r belongs to, at n.
func (p *MultiPlayer) advanceScene(r *clipRun, n clipseq.Tick) {
	if !r.clip.AutoSceneAdvance || r.clip.Scene == "" {
		return
	}
	next, ok := p.song.NextScene(r.clip.Scene)
	if !ok {
		p.log.Debug("no scene to advance to", "scene", r.clip.Scene)
		return
	}
	for _, l := range p.pending {
		if l.scene == next && l.at == n {
			return
		}
	}
	runs, err := p.newRuns(next.Clips)
	if err != nil {
		p.fail(fmt.Errorf("could not advance to scene %q: %w", next.ID, err))
		return
	}
	l := &launch{at: n, runs: runs, scene: next, reset: true}
	p.pending = append(p.pending, l)
	for _, r := range runs {
		p.emit(r, n)
	}
}

// updateTempo applies the tempo shift of the most recently entered running
// slot to the base tempo. The new tempo takes effect when n is committed.
func (p *MultiPlayer) updateTempo(n clipseq.Tick) {
	bpm := p.baseBPM
	var latest *clipRun
	for _, r := range p.runs {
		if r.state == Running && (latest == nil || r.entry > latest.entry) {
			latest = r
		}
	}
	if latest != nil {
		bpm += latest.shift
	}
	if err := p.clock.SetBPM(bpm); err != nil {
		p.log.Warn("ignoring tempo shift", "bpm", bpm, "err", err)
		return
	}
	if bpm == p.tempoSent {
		return
	}
	p.tempoSent = bpm
	for _, o := range p.outputs {
		if ts, ok := o.sink.(clipseq.TempoSink); ok {
			if err := ts.Tempo(bpm, n); err != nil {
				p.sinkError(o.inst.ID, err)
			}
		}
	}
	p.status(TempoMsg{BPM: bpm, At: n})
}

// drain dispatches every event due at or before n. The track queues are
// merged, so events at the same tick follow the activation order of their
// clips whatever track they are on.
func (p *MultiPlayer) drain(n clipseq.Tick) {
	for {
		var next *trackRun
		var head *queued
		for _, tr := range p.tracks {
			if e, ok := tr.queue.peekDue(n); ok && (head == nil || before(e, head)) {
				next, head = tr, e
			}
		}
		if next == nil {
			break
		}
		p.dispatch(next, next.queue.pop())
	}
	p.dropIdleAuditionTracks()
}

func (p *MultiPlayer) dispatch(tr *trackRun, e queued) {
	k := soundKey{owner: e.owner, pitch: e.pitch}
	switch e.kind {
	case clipseq.EventNoteOn:
		tr.sounding[k]++
	case clipseq.EventNoteOff:
		if tr.sounding[k] == 0 {
			return
		}
		if tr.sounding[k]--; tr.sounding[k] == 0 {
			delete(tr.sounding, k)
		}
	}
	if tr.track.Muted {
		return
	}
	for _, o := range tr.outputs {
		if o.inst.Muted {
			continue
		}
		ev := clipseq.Event{
			At:         e.at,
			Kind:       e.kind,
			Instrument: o.inst.ID,
			Channel:    o.inst.Channel,
			Pitch:      o.inst.Clamp(e.pitch),
			Velocity:   o.inst.NoteVelocity(e.velocity),
			Controller: e.controller,
			Value:      e.value,
		}
		if e.kind != clipseq.EventNoteOn {
			ev.Velocity = 0
		}
		if err := ev.Send(o.sink); err != nil {
			p.sinkError(o.inst.ID, err)
		}
	}
}

// releaseAll drops every queued event of tr and sends note-offs at at for
// everything sounding on it.
func (p *MultiPlayer) releaseAll(tr *trackRun, at clipseq.Tick) {
	p.release(tr, tr.forget(func(*clipRun) bool { return true }), at)
}

func (p *MultiPlayer) release(tr *trackRun, pitches []int, at clipseq.Tick) {
	if tr.track.Muted {
		return
	}
	for _, pitch := range pitches {
		for _, o := range tr.outputs {
			if o.inst.Muted {
				continue
			}
			if err := o.sink.NoteOff(o.inst.Clamp(pitch), o.inst.Channel, at); err != nil {
				p.sinkError(o.inst.ID, err)
			}
		}
	}
}

// releaseTick is the tick note-offs are sent at when notes are cut short:
// the last committed tick, so they precede anything starting at the next.
func (p *MultiPlayer) releaseTick() clipseq.Tick {
	return max(p.clock.Now(), 0)
}

// cancelWhere cancels every running or waiting clip for which f is true and
// releases the notes they have sounding.
func (p *MultiPlayer) cancelWhere(f func(*clipRun) bool) {
	at := p.releaseTick()
	for _, l := range p.pending {
		for _, r := range l.runs {
			if r.state == Ready && f(r) {
				p.cancel(r, at)
			}
		}
	}
	for _, r := range slices.Clone(p.runs) {
		if r.active() && f(r) {
			p.cancel(r, at)
		}
	}
	p.pruneRuns()
	p.pending = slices.DeleteFunc(p.pending, func(l *launch) bool {
		return !slices.ContainsFunc(l.runs, func(r *clipRun) bool { return r.state == Ready })
	})
}

func (p *MultiPlayer) cancel(r *clipRun, at clipseq.Tick) {
	r.state = Cancelled
	if r.track.active == r {
		r.track.active = nil
	}
	if r.isAudition && p.auditions[r.audition] == r {
		delete(p.auditions, r.audition)
	}
	p.release(r.track, r.track.forget(func(o *clipRun) bool { return o == r }), at)
	p.emit(r, at)
}

func (p *MultiPlayer) pruneRuns() {
	p.runs = slices.DeleteFunc(p.runs, func(r *clipRun) bool { return !r.active() })
}

func (p *MultiPlayer) idle() bool {
	if len(p.pending) > 0 || len(p.runs) > 0 {
		return false
	}
	for _, tr := range p.tracks {
		if !tr.idle() {
			return false
		}
	}
	return true
}

func (p *MultiPlayer) flush(at clipseq.Tick) {
	for _, tr := range p.tracks {
		for _, o := range tr.outputs {
			if err := o.sink.FlushThrough(at); err != nil {
				p.sinkError(o.inst.ID, err)
			}
		}
	}
}

func (p *MultiPlayer) sinkError(id clipseq.InstrumentID, err error) {
	p.sinkErrors[id]++
	err = fmt.Errorf("%w: instrument %q: %w", clipseq.ErrSinkDispatch, id, err)
	p.log.Warn("sink dispatch failed", "instrument", id, "count", p.sinkErrors[id], "err", err)
	p.status(ErrorMsg{Err: err})
}

func (p *MultiPlayer) fail(err error) {
	p.log.Warn("player error", "err", err)
	p.status(ErrorMsg{Err: err})
}

func (p *MultiPlayer) emit(r *clipRun, at clipseq.Tick) {
	ev := r.event(at)
	p.log.Debug("clip", "clip", ev.Clip, "track", ev.Track, "state", ev.State, "slot", ev.Slot, "pass", ev.Pass, "tick", at)
	if p.opts.OnClipEvent != nil {
		p.opts.OnClipEvent(ev)
	}
	p.status(ev)
}

// status sends a message to the broker without ever blocking.
func (p *MultiPlayer) status(msg any) {
	if p.opts.Broker != nil {
		TrySend(p.opts.Broker.FromPlayer, msg)
	}
}

func (p *MultiPlayer) processMessages() {
	if p.opts.Broker == nil {
		return
	}
loop:
	for {
		select {
		case msg := <-p.opts.Broker.ToPlayer:
			var err error
			switch m := msg.(type) {
			case LaunchSceneMsg:
				err = p.AddScene(m.Scene)
			case LaunchClipsMsg:
				err = p.AddClips(m.Clips...)
			case RemoveTrackMsg:
				err = p.RemoveClipsWithTrack(m.Track)
			case StopMsg:
				p.Stop()
			case BPMMsg:
				err = p.SetBPM(m.BPM)
			case ResetPoolsMsg:
				p.ResetPools()
			case AuditionMsg:
				err = p.auditionMsg(m)
			default:
				// ignore unknown messages
			}
			if err != nil {
				p.fail(err)
			}
		default:
			break loop
		}
	}
}
