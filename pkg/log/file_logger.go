package log

import (
	"fmt"
	"os"
	"sync"
)

// FileLoggerOptions configures rotation of a FileLogger.
type FileLoggerOptions struct {
	// MaxBytes rotates the file before a write would grow it past this size.
	// Zero disables rotation.
	MaxBytes int64

	// Keep is the number of rotated segments kept as path.1 (newest) to
	// path.Keep (oldest). With rotation enabled and Keep zero, the file is
	// truncated instead.
	Keep int
}

// FileLogger appends CBOR-encoded events to a file.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	path string
	opts FileLoggerOptions

	mu     sync.Mutex
	file   *os.File
	size   int64
	closed bool
}

// NewFileLogger creates a FileLogger appending to path without rotation.
func NewFileLogger(path string) (*FileLogger, error) {
	return OpenFileLogger(path, FileLoggerOptions{})
}

// OpenFileLogger creates a FileLogger appending to path.
func OpenFileLogger(path string, opts FileLoggerOptions) (*FileLogger, error) {
	l := &FileLogger{path: path, opts: opts}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// Log appends an event. Encoding and write errors are dropped.
func (l *FileLogger) Log(event Event) {
	data, err := event.MarshalBinary()
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if l.opts.MaxBytes > 0 && l.size > 0 && l.size+int64(len(data)) > l.opts.MaxBytes {
		if err := l.rotate(); err != nil {
			return
		}
	}

	n, _ := l.file.Write(data)
	l.size += int64(n)
}

// rotate shifts path.N to path.N+1, dropping the oldest, and reopens path.
func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	if l.opts.Keep == 0 {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return l.open()
	}

	_ = os.Remove(segmentName(l.path, l.opts.Keep))
	for i := l.opts.Keep - 1; i >= 1; i-- {
		if err := os.Rename(segmentName(l.path, i), segmentName(l.path, i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(l.path, segmentName(l.path, 1)); err != nil {
		return err
	}
	return l.open()
}

// Close closes the file. Close is idempotent and later Log calls are
// ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

func segmentName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

// Segments returns the existing files of a rotated event log, oldest first.
// The live file path comes last if it exists.
func Segments(path string) []string {
	var older []string
	for i := 1; ; i++ {
		name := segmentName(path, i)
		if _, err := os.Stat(name); err != nil {
			break
		}
		older = append(older, name)
	}

	out := make([]string, 0, len(older)+1)
	for i := len(older) - 1; i >= 0; i-- {
		out = append(out, older[i])
	}
	if _, err := os.Stat(path); err == nil {
		out = append(out, path)
	}
	return out
}

var _ Logger = (*FileLogger)(nil)
