package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ssargent/raffle/pkg/store"
	"go.uber.org/zap"
)

// PebbleEngine stores records in a pebble LSM directory
type PebbleEngine struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

var _ store.Engine = (*PebbleEngine)(nil)

// NewPebbleEngine opens (or creates) a pebble database at path. When syncWrites
// is false writes are only made durable by Sync or Close.
func NewPebbleEngine(path string, syncWrites bool, logger *zap.Logger) (*PebbleEngine, error) {
	opts := &pebble.Options{}
	if logger != nil {
		opts.Logger = logger.Named("pebble").Sugar()
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}

	writeOpts := pebble.NoSync
	if syncWrites {
		writeOpts = pebble.Sync
	}
	return &PebbleEngine{db: db, writeOpts: writeOpts}, nil
}

func (s *PebbleEngine) Put(key, value []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}
	if len(value) == 0 {
		return store.ErrInvalidValue
	}
	return s.db.Set(key, value, s.writeOpts)
}

func (s *PebbleEngine) Get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, store.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed
	value := make([]byte, len(data))
	copy(value, data)
	return value, nil
}

func (s *PebbleEngine) Delete(key []byte) error {
	if len(key) == 0 {
		return store.ErrInvalidKey
	}
	return s.db.Delete(key, s.writeOpts)
}

// Scan visits pairs in key order over a consistent pebble snapshot
func (s *PebbleEngine) Scan(fn func(key, value []byte) error) error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			_ = iter.Close()
			return err
		}
	}

	return iter.Close()
}

func (s *PebbleEngine) Len() (int, error) {
	n := 0
	err := s.Scan(func(key, value []byte) error {
		n++
		return nil
	})
	return n, err
}

// Sync flushes memtables so NoSync writes reach disk
func (s *PebbleEngine) Sync() error {
	return s.db.Flush()
}

func (s *PebbleEngine) Close() error {
	return s.db.Close()
}
