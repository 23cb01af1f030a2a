package clipseq

// Track is a lane of the song. At any instant at most one clip plays on a
// track, and everything it plays goes to all of the track's instruments.
type Track struct {
	ID          TrackID
	Instruments []InstrumentID
	Muted       bool

	hidden bool
}

// NewAuditionTrack returns a hidden track used only for previewing. Hidden
// tracks are never part of a Song.
func NewAuditionTrack(id TrackID, instruments ...InstrumentID) *Track {
	return &Track{ID: id, Instruments: instruments, hidden: true}
}

func (t *Track) Hidden() bool { return t.hidden }
