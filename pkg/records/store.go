// Package records keeps signup records in a key-value engine and implements
// listing, export and the raffle draw on top of them.
package records

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ssargent/raffle/pkg/codec"
	"github.com/ssargent/raffle/pkg/store"
	"go.uber.org/zap"
)

// maxCreateAttempts bounds identifier regeneration on collision
const maxCreateAttempts = 5

// Record is the stored signup
type Record = codec.Record

// Entry pairs a record with its identifier
type Entry struct {
	ID     string `json:"id"`
	Record Record `json:"record"`
}

// Store maps identifiers to records. It owns the engine it wraps.
type Store struct {
	engine store.Engine
	codec  *codec.RecordCodec
	newID  IDGenerator
	intN   func(n int) int
	sugar  *zap.SugaredLogger

	// serializes the existence check and write in Create
	createMu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithIntN replaces the random source used by PickRandom. intN must return a
// value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(s *Store) {
		s.intN = intN
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.sugar = logger.Named("records").Sugar()
	}
}

// New wraps an opened engine
func New(engine store.Engine, opts ...Option) *Store {
	s := &Store{
		engine: engine,
		codec:  codec.NewRecordCodec(),
		newID:  UUIDGenerator,
		intN:   rand.IntN,
		sugar:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores record under a fresh identifier and returns it. An existing
// key is never overwritten.
func (s *Store) Create(record Record) (string, error) {
	data, err := s.codec.Encode(normalizeNewlines(record))
	if err != nil {
		return "", err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		id := s.newID()
		if id == "" {
			return "", ErrInvalidID
		}

		_, err := s.engine.Get([]byte(id))
		switch {
		case err == nil:
			s.sugar.Warnw("identifier collision, regenerating", "id", id, "attempt", attempt+1)
			continue
		case !errors.Is(err, store.ErrKeyNotFound):
			return "", fmt.Errorf("failed to check id %s: %w", id, err)
		}

		if err := s.engine.Put([]byte(id), data); err != nil {
			return "", fmt.Errorf("failed to store record: %w", err)
		}
		s.sugar.Debugw("record created", "id", id)
		return id, nil
	}

	return "", fmt.Errorf("failed to generate a unique id after %d attempts", maxCreateAttempts)
}

// normalizeNewlines stores line breaks as "\n". Browsers post textarea
// content with "\r\n", which a CSV reader would not give back on import.
func normalizeNewlines(r Record) Record {
	for _, field := range []*string{
		&r.FirstName, &r.LastName, &r.Company, &r.Title, &r.Department,
		&r.Email, &r.City, &r.Country, &r.PhoneNumber, &r.Comment,
	} {
		*field = strings.ReplaceAll(*field, "\r\n", "\n")
	}
	return r
}

// Get returns the record stored under id
func (s *Store) Get(id string) (Record, error) {
	if id == "" {
		return Record{}, ErrInvalidID
	}

	data, err := s.engine.Get([]byte(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Record{}, err
	}

	record, err := s.codec.Decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", id, err)
	}
	return record, nil
}

// Update replaces the record under id, creating it if absent
func (s *Store) Update(id string, record Record) error {
	if id == "" {
		return ErrInvalidID
	}

	data, err := s.codec.Encode(normalizeNewlines(record))
	if err != nil {
		return err
	}
	if err := s.engine.Put([]byte(id), data); err != nil {
		return fmt.Errorf("failed to store record %s: %w", id, err)
	}
	s.sugar.Debugw("record updated", "id", id)
	return nil
}

// Delete removes the record under id. Deleting a missing id is not an error.
func (s *Store) Delete(id string) error {
	if id == "" {
		return ErrInvalidID
	}

	if err := s.engine.Delete([]byte(id)); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	s.sugar.Debugw("record deleted", "id", id)
	return nil
}

// List returns every decodable entry in engine order. Entries that fail to
// decode are logged and skipped.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.engine.Scan(func(key, value []byte) error {
		record, err := s.codec.Decode(value)
		if err != nil {
			s.sugar.Warnw("skipping undecodable record", "id", string(key), "error", err)
			return nil
		}
		entries = append(entries, Entry{ID: string(key), Record: record})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored keys
func (s *Store) Count() (int, error) {
	return s.engine.Len()
}

// PickRandom draws one entry with equal probability for every entry
func (s *Store) PickRandom() (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrEmptyStore
	}

	winner := entries[s.intN(len(entries))]
	s.sugar.Infow("raffle drawn", "id", winner.ID, "entries", len(entries))
	return winner, nil
}

// Sync flushes pending writes to durable storage
func (s *Store) Sync() error {
	return s.engine.Sync()
}

// Close flushes and releases the engine
func (s *Store) Close() error {
	syncErr := s.engine.Sync()
	if errors.Is(syncErr, store.ErrStoreClosed) {
		syncErr = nil
	}
	return errors.Join(syncErr, s.engine.Close())
}
