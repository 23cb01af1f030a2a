package clipseq

// Instrument is an output endpoint a Track plays through: a device name that
// the sink factory maps to a port, and a MIDI channel on it.
type Instrument struct {
	ID      InstrumentID
	Device  string
	Channel int // 0..15

	// MinOctave and MaxOctave fold notes into a playable range. Both zero
	// means no limit.
	MinOctave int
	MaxOctave int

	// Velocity, when positive, replaces the velocity of every note.
	Velocity int

	Muted bool
}

// Clamp folds pitch by whole octaves into the instrument's octave range and
// into 0..127.
func (i *Instrument) Clamp(pitch int) int {
	if i.MinOctave != 0 || i.MaxOctave != 0 {
		lo := (i.MinOctave + 1) * 12
		hi := (i.MaxOctave+1)*12 + 11
		for pitch < lo && pitch+12 <= 127 {
			pitch += 12
		}
		for pitch > hi && pitch-12 >= 0 {
			pitch -= 12
		}
	}
	return clamp(pitch, 0, 127)
}

// NoteVelocity returns the velocity the instrument plays v at.
func (i *Instrument) NoteVelocity(v int) int {
	if i.Velocity > 0 {
		return clamp(i.Velocity, 1, 127)
	}
	return clamp(v, 1, 127)
}
