package store

import (
	"errors"
	"io"
	"sort"
	"sync"
)

// HashIndex maps every live key to the location of its latest entry
type HashIndex struct {
	entries map[string]*IndexEntry
	mutex   sync.RWMutex
}

// NewHashIndex creates a new hash index
func NewHashIndex() *HashIndex {
	return &HashIndex{
		entries: make(map[string]*IndexEntry),
	}
}

// Put adds or updates an index entry for a key
func (idx *HashIndex) Put(key []byte, entry *IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries[string(key)] = entry
}

// Get retrieves the index entry for a key
func (idx *HashIndex) Get(key []byte) (*IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entry, exists := idx.entries[string(key)]
	return entry, exists
}

// Delete removes a key from the index
func (idx *HashIndex) Delete(key []byte) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	delete(idx.entries, string(key))
}

// Size returns the number of keys in the index
func (idx *HashIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	return len(idx.entries)
}

// KeyLocation pairs a key with where its entry lives
type KeyLocation struct {
	Key   string
	Entry IndexEntry
}

// Snapshot returns every key and its location ordered by log offset, which is
// the order keys were last written in.
func (idx *HashIndex) Snapshot() []KeyLocation {
	idx.mutex.RLock()
	locations := make([]KeyLocation, 0, len(idx.entries))
	for key, entry := range idx.entries {
		locations = append(locations, KeyLocation{Key: key, Entry: *entry})
	}
	idx.mutex.RUnlock()

	sort.Slice(locations, func(i, j int) bool {
		return locations[i].Entry.Offset < locations[j].Entry.Offset
	})
	return locations
}

// BuildFromLog replays the log from the start and repopulates the index. It
// stops at the first damaged entry and returns the number of intact entries
// and the offset just past the last of them.
func (idx *HashIndex) BuildFromLog(reader *LogReader) (int64, int64, error) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string]*IndexEntry)

	if err := reader.Seek(0); err != nil {
		return 0, 0, err
	}

	var validated int64
	for {
		offset := reader.Offset()
		e, err := reader.ReadNext()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrCorruption) {
				return validated, offset, nil
			}
			return validated, offset, err
		}
		validated++

		key := string(e.Key)
		if e.IsTombstone() {
			delete(idx.entries, key)
			continue
		}
		idx.entries[key] = &IndexEntry{
			Offset:    offset,
			Size:      uint32(e.Size()),
			Timestamp: e.Timestamp,
		}
	}
}
