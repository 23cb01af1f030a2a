package engine

import "github.com/vsariola/clipseq"

type (
	// Broker carries messages between a player and the goroutines that
	// control it, e.g. a signal handler or a user interface. The player owns
	// all of its state and only reads ToPlayer at the start of each Advance,
	// so other goroutines never touch the player directly.
	//
	// Everything the player sends is sent with TrySend: if nobody reads
	// FromPlayer, status messages are dropped rather than blocking playback.
	Broker struct {
		ToPlayer   chan any
		FromPlayer chan any
	}

	// Messages understood by the player.
	LaunchSceneMsg struct{ Scene clipseq.SceneID }
	LaunchClipsMsg struct{ Clips []clipseq.ClipID }
	RemoveTrackMsg struct{ Track clipseq.TrackID }
	StopMsg        struct{}
	BPMMsg         struct{ BPM float64 }
	ResetPoolsMsg  struct{}
	AuditionMsg    struct {
		Kind AuditionKind
		ID   string
		Slot int // for SlotAudition
	}

	// Messages sent by the player.
	StoppedMsg struct{ At clipseq.Tick }
	ErrorMsg   struct{ Err error }
	TempoMsg   struct {
		BPM float64
		At  clipseq.Tick
	}
)

// NewBroker returns a broker with buffered channels in both directions.
func NewBroker() *Broker {
	return &Broker{
		ToPlayer:   make(chan any, 1024),
		FromPlayer: make(chan any, 1024),
	}
}

// TrySend sends v on c unless c is full, and reports whether it did. It
// never blocks.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
		return true
	default:
		return false
	}
}
