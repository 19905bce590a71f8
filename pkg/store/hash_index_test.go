package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIndex_PutGetDelete(t *testing.T) {
	idx := NewHashIndex()
	assert.Equal(t, 0, idx.Size())

	key := []byte("test_key")
	entry := &IndexEntry{Offset: 100, Size: 50, Timestamp: 1234567890}

	idx.Put(key, entry)

	retrieved, exists := idx.Get(key)
	assert.True(t, exists)
	assert.Equal(t, *entry, *retrieved)
	assert.Equal(t, 1, idx.Size())

	idx.Delete(key)
	_, exists = idx.Get(key)
	assert.False(t, exists)
	assert.Equal(t, 0, idx.Size())

	idx.Delete([]byte("never_there"))
	assert.Equal(t, 0, idx.Size())
}

func TestHashIndex_SnapshotOrderedByOffset(t *testing.T) {
	idx := NewHashIndex()

	idx.Put([]byte("c"), &IndexEntry{Offset: 300})
	idx.Put([]byte("a"), &IndexEntry{Offset: 100})
	idx.Put([]byte("b"), &IndexEntry{Offset: 200})

	snap := idx.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "a", snap[0].Key)
	assert.Equal(t, "b", snap[1].Key)
	assert.Equal(t, "c", snap[2].Key)

	// The snapshot is a copy
	idx.Delete([]byte("a"))
	assert.Len(t, snap, 3)
}

func TestHashIndex_ConcurrentAccess(t *testing.T) {
	idx := NewHashIndex()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := []byte(fmt.Sprintf("g%d-k%d", g, i))
				idx.Put(key, &IndexEntry{Offset: int64(i)})
				idx.Get(key)
				_ = idx.Snapshot()
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 800, idx.Size())
}

func TestHashIndex_BuildFromLog(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "test.log")

	writer, err := NewLogWriter(LogWriterConfig{FilePath: filePath})
	require.NoError(t, err)
	appendEntry(t, writer, "a", "1")
	appendEntry(t, writer, "b", "2")
	appendEntry(t, writer, "a", "3")

	tombstone, err := NewEntry([]byte("b"), nil)
	require.NoError(t, err)
	_, err = writer.Append(tombstone)
	require.NoError(t, err)
	size := writer.Size()
	require.NoError(t, writer.Close())

	reader, err := NewLogReader(LogReaderConfig{FilePath: filePath})
	require.NoError(t, err)
	defer reader.Close()

	idx := NewHashIndex()
	validated, end, err := idx.BuildFromLog(reader)
	require.NoError(t, err)

	assert.Equal(t, int64(4), validated)
	assert.Equal(t, size, end)
	assert.Equal(t, 1, idx.Size())

	entry, exists := idx.Get([]byte("a"))
	require.True(t, exists)
	e, err := reader.ReadAt(entry.Offset, entry.Size)
	require.NoError(t, err)
	assert.Equal(t, "3", string(e.Value), "latest write wins")

	_, exists = idx.Get([]byte("b"))
	assert.False(t, exists, "tombstone removes the key")
}
