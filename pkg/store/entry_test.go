package store

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestEntry_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{
			name:  "simple key-value",
			key:   []byte("0b5c6f1e-2a4d-4c1b-9a8e-6f5d4c3b2a10"),
			value: []byte("encoded record"),
		},
		{
			name:  "tombstone",
			key:   []byte("some key"),
			value: nil,
		},
		{
			name:  "binary data",
			key:   []byte{0x00, 0x01, 0x02, 0x03},
			value: []byte{0xFF, 0xFE, 0xFD, 0xFC},
		},
		{
			name:  "large value",
			key:   []byte("k"),
			value: bytes.Repeat([]byte("v"), 10240),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewEntry(tc.key, tc.value)
			if err != nil {
				t.Fatalf("NewEntry failed: %v", err)
			}

			encoded := e.Encode()
			if len(encoded) != EntryHeaderSize+len(tc.key)+len(tc.value) {
				t.Errorf("Encoded size mismatch: got %d", len(encoded))
			}

			decoded, err := DecodeEntry(encoded)
			if err != nil {
				t.Fatalf("DecodeEntry failed: %v", err)
			}

			if !bytes.Equal(decoded.Key, tc.key) {
				t.Errorf("Key mismatch: got %v, want %v", decoded.Key, tc.key)
			}
			if !bytes.Equal(decoded.Value, tc.value) {
				t.Errorf("Value mismatch: got %v, want %v", decoded.Value, tc.value)
			}
			if decoded.IsTombstone() != (len(tc.value) == 0) {
				t.Errorf("IsTombstone mismatch for %q", tc.name)
			}

			now := time.Now().UnixNano()
			if decoded.Timestamp > uint64(now) || decoded.Timestamp < uint64(now-int64(time.Minute)) {
				t.Errorf("Timestamp seems unreasonable: %d", decoded.Timestamp)
			}
		})
	}
}

func TestEntry_CorruptionDetected(t *testing.T) {
	e, err := NewEntry([]byte("test key"), []byte("test value"))
	if err != nil {
		t.Fatalf("NewEntry failed: %v", err)
	}
	encoded := e.Encode()

	positions := map[string]int{
		"crc":       0,
		"timestamp": 12,
		"key":       EntryHeaderSize,
		"value":     EntryHeaderSize + len("test key"),
	}

	for name, pos := range positions {
		t.Run(name, func(t *testing.T) {
			corrupted := append([]byte{}, encoded...)
			corrupted[pos] ^= 0xFF

			if _, err := DecodeEntry(corrupted); err != ErrCorruption {
				t.Errorf("Expected ErrCorruption, got %v", err)
			}
		})
	}
}

func TestDecodeEntry_MalformedData(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "empty data",
			data: []byte{},
		},
		{
			name: "too short for header",
			data: []byte{0x01, 0x02, 0x03},
		},
		{
			name: "insufficient data for declared key size",
			data: func() []byte {
				buf := make([]byte, EntryHeaderSize)
				binary.LittleEndian.PutUint32(buf[4:8], 100)
				return buf
			}(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeEntry(tc.data); err == nil {
				t.Errorf("Expected decode to fail for malformed data (%s)", tc.name)
			}
		})
	}
}
