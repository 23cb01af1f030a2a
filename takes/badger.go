package takes

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

var keyPrefix = []byte("take:")

// Badger is a Store backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory
	// is set.
	Dir string

	// InMemory runs BadgerDB without persisting anything. Useful for tests.
	InMemory bool

	// Logger receives badger's warnings and errors. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// NewBadger opens (or creates) a BadgerDB-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("takes: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{l})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func key(id string) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

func (b *Badger) Save(_ context.Context, t *Take) error {
	data, err := encode(t)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(t.ID), data)
	})
}

func (b *Badger) Get(_ context.Context, id string) (*Take, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(val)
}

func (b *Badger) List(_ context.Context) iter.Seq2[*Take, error] {
	var values [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = keyPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, val)
		}
		return nil
	})
	if err != nil {
		return func(yield func(*Take, error) bool) { yield(nil, err) }
	}
	return sortedSeq(values)
}

func (b *Badger) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger forwards badger's warnings and errors to slog and drops the
// rest.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, v ...interface{})   { b.l.Error("badger: " + format(f, v...)) }
func (b badgerLogger) Warningf(f string, v ...interface{}) { b.l.Warn("badger: " + format(f, v...)) }
func (badgerLogger) Infof(string, ...interface{})          {}
func (badgerLogger) Debugf(string, ...interface{})         {}

func format(f string, v ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(f, v...))
}
