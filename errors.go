package clipseq

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTempo is returned when a BPM is zero or negative.
	ErrInvalidTempo = errors.New("clipseq: bpm must be greater than 0")
	// ErrUnknownReference is matched by every UnknownReferenceError.
	ErrUnknownReference = errors.New("clipseq: unknown reference")
	// ErrSinkDispatch wraps errors returned by sinks while dispatching.
	ErrSinkDispatch = errors.New("clipseq: sink dispatch failed")
	// ErrInvalidSong is returned when a song fails validation.
	ErrInvalidSong = errors.New("clipseq: invalid song")
)

// UnknownReferenceError tells which entity kind and identifier could not be
// found in a Song.
type UnknownReferenceError struct {
	Kind string
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("clipseq: unknown %s %q", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrUnknownReference
}

func unknown[K ~string](kind string, id K) error {
	return &UnknownReferenceError{Kind: kind, ID: string(id)}
}

// ValidateBPM returns ErrInvalidTempo if bpm is not strictly positive.
func ValidateBPM(bpm float64) error {
	if !(bpm > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTempo, bpm)
	}
	return nil
}
