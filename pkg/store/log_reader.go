package store

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// LogReader provides sequential and random access to entries in a log file
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	size   int64 // file size when the cursor was last positioned
	config LogReaderConfig
}

// NewLogReader creates a new log reader for the specified file
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	r := &LogReader{
		file:   file,
		config: config,
	}
	if err := r.Seek(config.StartOffset); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

// ReadNext reads the entry at the current offset. It returns io.EOF at a
// clean end of file and ErrCorruption for a torn or damaged entry.
func (r *LogReader) ReadNext() (*Entry, error) {
	header := make([]byte, EntryHeaderSize)
	n, err := io.ReadFull(r.reader, header)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrCorruption
		}
		return nil, err
	}

	e, err := decodeEntryHeader(header)
	if err != nil {
		return nil, err
	}

	// a damaged header can claim sizes far past the end of the file
	remaining := r.size - r.offset - int64(n)
	if remaining < 0 || uint64(e.KeySize)+uint64(e.ValueSize) > uint64(remaining) {
		return nil, ErrCorruption
	}

	data := make([]byte, int(e.KeySize)+int(e.ValueSize))
	m, err := io.ReadFull(r.reader, data)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrCorruption
		}
		return nil, err
	}

	e.Key = data[:e.KeySize]
	e.Value = data[e.KeySize:]
	if err := e.Validate(); err != nil {
		return nil, err
	}

	r.offset += int64(n + m)
	return e, nil
}

// ReadAt reads the entry stored at offset without moving the sequential cursor.
// It is safe for concurrent use.
func (r *LogReader) ReadAt(offset int64, size uint32) (*Entry, error) {
	if size < EntryHeaderSize {
		return nil, ErrCorruption
	}

	buf := make([]byte, size)
	if _, err := r.file.ReadAt(buf, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrCorruption
		}
		return nil, err
	}

	return DecodeEntry(buf)
}

// Seek sets the sequential read offset. ReadNext does not read past the
// file size observed here.
func (r *LogReader) Seek(offset int64) error {
	info, err := r.file.Stat()
	if err != nil {
		return err
	}
	if _, err := r.file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	r.size = info.Size()

	r.reader = bufio.NewReader(r.file)
	r.offset = offset
	return nil
}

// Offset returns the offset of the next entry ReadNext will return
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Close closes the log reader
func (r *LogReader) Close() error {
	return r.file.Close()
}
