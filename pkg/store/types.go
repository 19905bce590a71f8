package store

import (
	"time"

	"go.uber.org/zap"
)

// DefaultFileName is the name of the data log inside the data directory
const DefaultFileName = "raffle.data"

// Engine is the byte-level key-value contract record storage is built on.
// Get returns ErrKeyNotFound for a missing key; Delete of a missing key is
// not an error. Keys and values must be non-empty.
type Engine interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	// Scan calls fn for every live pair. Returning an error from fn stops
	// the scan and Scan returns that error.
	Scan(fn func(key, value []byte) error) error
	Len() (int, error)
	Sync() error
	Close() error
}

// IndexEntry represents the location of a key-value pair in the log
type IndexEntry struct {
	Offset    int64  // Byte offset within the file
	Size      uint32 // Size of the entry in bytes
	Timestamp uint64 // Entry timestamp
}

// LogWriterConfig holds configuration for the log writer
type LogWriterConfig struct {
	FilePath      string        // Path to the data file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig holds configuration for the log reader
type LogReaderConfig struct {
	FilePath    string // Path to the data file
	StartOffset int64  // Offset to start reading from
}

// KVStoreConfig holds configuration for the key-value store
type KVStoreConfig struct {
	DataDir       string        // Directory for the data file
	FileName      string        // Data file name, DefaultFileName when empty
	FsyncInterval time.Duration // Fsync interval for durability
	Logger        *zap.Logger
}

// RecoveryResult describes what Open found while validating the data log
type RecoveryResult struct {
	EntriesValidated int64
	BytesTruncated   int64
	FileSizeBefore   int64
	FileSizeAfter    int64
	RecoveryTime     time.Duration
}

// StoreStats holds statistics about the store
type StoreStats struct {
	Keys     int
	DataSize int64
}

// Errors
var (
	ErrKeyNotFound  = &KVError{"key not found"}
	ErrInvalidKey   = &KVError{"invalid key"}
	ErrInvalidValue = &KVError{"invalid value"}
	ErrCorruption   = &KVError{"data corruption detected"}
	ErrStoreClosed  = &KVError{"store is not open"}
)

// KVError represents a key-value store error
type KVError struct {
	Message string
}

func (e *KVError) Error() string {
	return e.Message
}
