// Package takes stores recorded performances. Takes are encoded with
// msgpack and kept either in memory or in a BadgerDB directory.
package takes

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vsariola/clipseq"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a take does not exist in the store.
	ErrNotFound = errors.New("takes: not found")
)

// Take is one recorded performance of a song.
type Take struct {
	ID          string            `msgpack:"id"`
	Song        string            `msgpack:"song"`
	Scene       string            `msgpack:"scene,omitempty"`
	Created     time.Time         `msgpack:"created"`
	BeatsPerBar int               `msgpack:"beats_per_bar,omitempty"`
	Recording   clipseq.Recording `msgpack:"recording"`
}

// NewTake wraps rec in a take with a fresh random id.
func NewTake(song string, rec *clipseq.Recording) *Take {
	return &Take{
		ID:        uuid.NewString(),
		Song:      song,
		Created:   time.Now().UTC(),
		Recording: *rec,
	}
}

// Store is the interface for take storage.
type Store interface {
	// Save stores a take, replacing any take with the same id.
	Save(ctx context.Context, t *Take) error

	// Get returns the take with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Take, error)

	// List iterates over all takes, oldest first.
	List(ctx context.Context) iter.Seq2[*Take, error]

	// Delete removes a take. No error if it does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

func encode(t *Take) ([]byte, error) {
	if t.ID == "" {
		return nil, errors.New("takes: take has no id")
	}
	return msgpack.Marshal(t)
}

func decode(data []byte) (*Take, error) {
	var t Take
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Collect reads every take of a List iteration, stopping at the first error.
func Collect(seq iter.Seq2[*Take, error]) ([]*Take, error) {
	var ret []*Take
	for t, err := range seq {
		if err != nil {
			return ret, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}

func byCreated(a, b *Take) int {
	if c := a.Created.Compare(b.Created); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// sortedSeq decodes values and yields them oldest first.
func sortedSeq(values [][]byte) iter.Seq2[*Take, error] {
	return func(yield func(*Take, error) bool) {
		ts := make([]*Take, 0, len(values))
		for _, v := range values {
			t, err := decode(v)
			if err != nil {
				yield(nil, err)
				return
			}
			ts = append(ts, t)
		}
		slices.SortFunc(ts, byCreated)
		for _, t := range ts {
			if !yield(t, nil) {
				return
			}
		}
	}
}
