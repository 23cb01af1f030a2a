package engine

import (
	"fmt"

	"github.com/vsariola/clipseq"
)

// ClipState is the playback state of a launched clip.
type ClipState int

const (
	Ready     ClipState = iota // launched, waiting for its bar
	Running                    // playing a slot
	Barriered                  // slot done, waiting for the next bar
	Ended                      // played all repeats
	Cancelled                  // preempted or stopped
)

var clipStateNames = []string{"ready", "running", "barriered", "ended", "cancelled"}

func (s ClipState) String() string {
	if s < 0 || int(s) >= len(clipStateNames) {
		return fmt.Sprintf("ClipState(%d)", int(s))
	}
	return clipStateNames[s]
}

// ClipEvent reports a clip state change.
type ClipEvent struct {
	Clip   clipseq.ClipID
	Track  clipseq.TrackID
	State  ClipState
	Slot   int
	Pass   int
	At     clipseq.Tick
	Hidden bool
}

// ActiveClip is a snapshot of a clip that is launched but not finished.
type ActiveClip struct {
	Clip   clipseq.ClipID
	Track  clipseq.TrackID
	State  ClipState
	Slot   int
	Pass   int
	Hidden bool
}

// clipRun is the playback state of one launch of a clip. The clip itself is
// never modified.
type clipRun struct {
	clip  *clipseq.Clip
	track *trackRun
	state ClipState
	order uint64 // activation order, used to break ties between clips

	slot      int
	pass      int
	slotStart clipseq.Tick
	slotEnd   clipseq.Tick

	shift float64 // tempo shift of the current slot
	entry uint64  // when the current slot was entered, in slot entries

	audition    AuditionKind
	isAudition  bool
	sceneLaunch bool // launched as part of a scene
}

// lastSlot reports whether the current slot is the last one of the last
// pass.
func (r *clipRun) lastSlot() bool {
	return !r.clip.Infinite() && r.pass+1 >= r.clip.Repeat && r.slot >= r.clip.NumSlots()-1
}

func (r *clipRun) active() bool {
	return r.state == Ready || r.state == Running || r.state == Barriered
}

func (r *clipRun) event(at clipseq.Tick) ClipEvent {
	return ClipEvent{
		Clip:   r.clip.ID,
		Track:  r.track.track.ID,
		State:  r.state,
		Slot:   r.slot,
		Pass:   r.pass,
		At:     at,
		Hidden: r.clip.Hidden(),
	}
}
