package store

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// EntryHeaderSize is the fixed size of an on-disk log entry header:
// CRC32(4) + KeySize(4) + ValueSize(4) + Timestamp(8)
const EntryHeaderSize = 20

// Entry is a single framed key-value write in the data log. An empty value
// marks a tombstone.
type Entry struct {
	CRC32     uint32 // CRC32 checksum for integrity
	KeySize   uint32 // Size of the key in bytes
	ValueSize uint32 // Size of the value in bytes
	Timestamp uint64 // Unix timestamp in nanoseconds
	Key       []byte // Key data
	Value     []byte // Value data
}

// NewEntry creates a new entry stamped with the current time
func NewEntry(key, value []byte) (*Entry, error) {
	if uint64(len(key)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("key too large: %d bytes", len(key))
	}
	if uint64(len(value)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("value too large: %d bytes", len(value))
	}
	return &Entry{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}, nil
}

// IsTombstone reports whether the entry deletes its key
func (e *Entry) IsTombstone() bool {
	return e.ValueSize == 0
}

// Size returns the total size of the entry when encoded
func (e *Entry) Size() int {
	return EntryHeaderSize + int(e.KeySize) + int(e.ValueSize)
}

// Encode serializes the entry, computing its checksum
// Format: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
func (e *Entry) Encode() []byte {
	e.CRC32 = e.checksum()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], e.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[EntryHeaderSize:], e.Key)
	copy(buf[EntryHeaderSize+int(e.KeySize):], e.Value)

	return buf
}

// decodeEntryHeader parses the fixed header, leaving Key and Value unset
func decodeEntryHeader(header []byte) (*Entry, error) {
	if len(header) < EntryHeaderSize {
		return nil, ErrCorruption
	}
	return &Entry{
		CRC32:     binary.LittleEndian.Uint32(header[0:4]),
		KeySize:   binary.LittleEndian.Uint32(header[4:8]),
		ValueSize: binary.LittleEndian.Uint32(header[8:12]),
		Timestamp: binary.LittleEndian.Uint64(header[12:20]),
	}, nil
}

// DecodeEntry deserializes a full entry and validates its checksum
func DecodeEntry(data []byte) (*Entry, error) {
	e, err := decodeEntryHeader(data)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) < uint64(EntryHeaderSize)+uint64(e.KeySize)+uint64(e.ValueSize) {
		return nil, ErrCorruption
	}

	e.Key = data[EntryHeaderSize : EntryHeaderSize+int(e.KeySize)]
	e.Value = data[EntryHeaderSize+int(e.KeySize) : e.Size()]

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the integrity of an entry using CRC32
func (e *Entry) Validate() error {
	if e.CRC32 != e.checksum() {
		return ErrCorruption
	}
	return nil
}

// checksum covers every field except the CRC itself
func (e *Entry) checksum() uint32 {
	var header [EntryHeaderSize - 4]byte
	binary.LittleEndian.PutUint32(header[0:], e.KeySize)
	binary.LittleEndian.PutUint32(header[4:], e.ValueSize)
	binary.LittleEndian.PutUint64(header[8:], e.Timestamp)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(header[:])
	_, _ = crc.Write(e.Key)
	_, _ = crc.Write(e.Value)
	return crc.Sum32()
}
