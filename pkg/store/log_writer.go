package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogWriter handles append-only writes to the data file
type LogWriter struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     LogWriterConfig
	mutex      sync.Mutex
	offset     int64 // Current write offset
	dirty      bool  // Written since the last fsync
}

// NewLogWriter creates a new log writer with the given configuration
func NewLogWriter(config LogWriterConfig) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if config.BufferSize <= 0 {
		config.BufferSize = 64 * 1024
	}

	w := &LogWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
		config: config,
		offset: offset,
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			_ = w.sync()
		})
		w.fsyncTimer.Stop()
	}

	return w, nil
}

// Append writes an entry to the log and returns the offset it starts at.
// The entry is handed to the OS before Append returns so readers see it;
// fsync happens immediately or after FsyncInterval.
func (w *LogWriter) Append(e *Entry) (int64, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file == nil {
		return 0, ErrStoreClosed
	}

	n, err := w.writer.Write(e.Encode())
	if err != nil {
		return 0, err
	}
	if err := w.writer.Flush(); err != nil {
		return 0, err
	}

	recordOffset := w.offset
	w.offset += int64(n)
	w.dirty = true

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, err
		}
	} else {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return recordOffset, nil
}

// Sync forces a fsync to disk
func (w *LogWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *LogWriter) sync() error {
	if w.file == nil || !w.dirty {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return err
	}
	if err := w.file.Sync(); err != nil {
		return err
	}
	w.dirty = false
	return nil
}

// Close stops the fsync timer, syncs and closes the file
func (w *LogWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.file == nil {
		return nil
	}

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	syncErr := w.sync()
	closeErr := w.file.Close()
	w.file = nil

	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

// Size returns the current size of the log file
func (w *LogWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *LogWriter) Path() string {
	return w.config.FilePath
}
