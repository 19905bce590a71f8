package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// KVStore is a single-file, append-only key-value engine with an in-memory
// hash index. It implements Engine.
type KVStore struct {
	config   KVStoreConfig
	writer   *LogWriter
	reader   *LogReader
	index    *HashIndex
	dataFile string
	sugar    *zap.SugaredLogger
	mutex    sync.RWMutex
	isOpen   bool
}

var _ Engine = (*KVStore)(nil)

// NewKVStore creates a new key-value store instance
func NewKVStore(config KVStoreConfig) (*KVStore, error) {
	if config.DataDir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	if err := os.MkdirAll(config.DataDir, 0750); err != nil {
		return nil, err
	}
	if config.FileName == "" {
		config.FileName = DefaultFileName
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &KVStore{
		config:   config,
		dataFile: filepath.Join(config.DataDir, config.FileName),
		index:    NewHashIndex(),
		sugar:    logger.Sugar(),
	}, nil
}

// Open replays the data log into the index. A torn or corrupt tail left by a
// crash is truncated away before the writer appends to the file.
func (kv *KVStore) Open() (*RecoveryResult, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if kv.isOpen {
		return &RecoveryResult{}, nil
	}

	result, err := kv.recover()
	if err != nil {
		return nil, err
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      kv.dataFile,
		FsyncInterval: kv.config.FsyncInterval,
		BufferSize:    64 * 1024,
	})
	if err != nil {
		kv.closeReader()
		return nil, err
	}
	kv.writer = writer

	if kv.reader == nil {
		reader, err := NewLogReader(LogReaderConfig{FilePath: kv.dataFile})
		if err != nil {
			_ = kv.writer.Close()
			return nil, err
		}
		kv.reader = reader
	}

	kv.isOpen = true
	kv.sugar.Infow("store opened",
		"file", kv.dataFile,
		"keys", kv.index.Size(),
		"entries", result.EntriesValidated,
		"truncated_bytes", result.BytesTruncated,
		"recovery_time", result.RecoveryTime)

	return result, nil
}

// recover validates an existing data log and rebuilds the index from it
func (kv *KVStore) recover() (*RecoveryResult, error) {
	start := time.Now()

	info, err := os.Stat(kv.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &RecoveryResult{RecoveryTime: time.Since(start)}, nil
		}
		return nil, err
	}

	reader, err := NewLogReader(LogReaderConfig{FilePath: kv.dataFile})
	if err != nil {
		return nil, err
	}

	validated, end, err := kv.index.BuildFromLog(reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	result := &RecoveryResult{
		EntriesValidated: validated,
		FileSizeBefore:   info.Size(),
		FileSizeAfter:    info.Size(),
	}

	if end < info.Size() {
		if err := os.Truncate(kv.dataFile, end); err != nil {
			_ = reader.Close()
			return nil, fmt.Errorf("failed to truncate corrupt tail: %w", err)
		}
		result.FileSizeAfter = end
		result.BytesTruncated = info.Size() - end
		kv.sugar.Warnw("truncated corrupt tail of data log",
			"file", kv.dataFile,
			"offset", end,
			"bytes", result.BytesTruncated)
	}

	kv.reader = reader
	result.RecoveryTime = time.Since(start)
	return result, nil
}

// Get retrieves a value for a key
func (kv *KVStore) Get(key []byte) ([]byte, error) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	if !kv.isOpen {
		return nil, ErrStoreClosed
	}

	entry, exists := kv.index.Get(key)
	if !exists {
		return nil, ErrKeyNotFound
	}

	e, err := kv.reader.ReadAt(entry.Offset, entry.Size)
	if err != nil {
		return nil, fmt.Errorf("read %q at offset %d: %w", key, entry.Offset, err)
	}
	if e.IsTombstone() {
		return nil, ErrKeyNotFound
	}

	return e.Value, nil
}

// Put stores a key-value pair. Empty values are rejected because an empty
// value marks a tombstone in the log.
func (kv *KVStore) Put(key, value []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if len(value) == 0 {
		return ErrInvalidValue
	}

	e, err := NewEntry(key, value)
	if err != nil {
		return err
	}

	offset, err := kv.writer.Append(e)
	if err != nil {
		return err
	}

	kv.index.Put(key, &IndexEntry{
		Offset:    offset,
		Size:      uint32(e.Size()),
		Timestamp: e.Timestamp,
	})

	return nil
}

// Delete writes a tombstone for a live key. Deleting a missing key is a no-op.
func (kv *KVStore) Delete(key []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if _, exists := kv.index.Get(key); !exists {
		return nil
	}

	e, err := NewEntry(key, nil)
	if err != nil {
		return err
	}
	if _, err := kv.writer.Append(e); err != nil {
		return err
	}

	kv.index.Delete(key)
	return nil
}

// Scan visits every live pair in the order keys were last written. It works
// on a snapshot of the index taken when it starts.
func (kv *KVStore) Scan(fn func(key, value []byte) error) error {
	kv.mutex.RLock()
	if !kv.isOpen {
		kv.mutex.RUnlock()
		return ErrStoreClosed
	}
	locations := kv.index.Snapshot()
	reader := kv.reader
	kv.mutex.RUnlock()

	for _, loc := range locations {
		e, err := reader.ReadAt(loc.Entry.Offset, loc.Entry.Size)
		if err != nil {
			return fmt.Errorf("read %q at offset %d: %w", loc.Key, loc.Entry.Offset, err)
		}
		if e.IsTombstone() {
			continue
		}
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of live keys
func (kv *KVStore) Len() (int, error) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	if !kv.isOpen {
		return 0, ErrStoreClosed
	}
	return kv.index.Size(), nil
}

// Sync flushes and fsyncs the data log
func (kv *KVStore) Sync() error {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	return kv.writer.Sync()
}

// Close syncs and shuts down the store. Closing a closed store is a no-op.
func (kv *KVStore) Close() error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil
	}
	kv.isOpen = false

	var errs []error
	if kv.writer != nil {
		errs = append(errs, kv.writer.Close())
	}
	if kv.reader != nil {
		errs = append(errs, kv.reader.Close())
		kv.reader = nil
	}

	kv.sugar.Infow("store closed", "file", kv.dataFile)
	return errors.Join(errs...)
}

func (kv *KVStore) closeReader() {
	if kv.reader != nil {
		_ = kv.reader.Close()
		kv.reader = nil
	}
}

// Stats returns store statistics
func (kv *KVStore) Stats() *StoreStats {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	if !kv.isOpen {
		return &StoreStats{}
	}

	return &StoreStats{
		Keys:     kv.index.Size(),
		DataSize: kv.writer.Size(),
	}
}

// Path returns the data file path
func (kv *KVStore) Path() string {
	return kv.dataFile
}
