package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects events. Zero fields match everything.
type Filter struct {
	// Direction filters by direction.
	Direction *Direction

	// Envelope filters by exact envelope type name.
	Envelope string

	// Format filters by wire format name.
	Format string

	// FailuresOnly keeps only failed operations.
	FailuresOnly bool

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

func (f *Filter) matches(event Event) bool {
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Envelope != "" && event.Envelope != f.Envelope {
		return false
	}
	if f.Format != "" && event.Format != f.Format {
		return false
	}
	if f.FailuresOnly && !event.Failed() {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader streams events from one or more CBOR event files in order.
type Reader struct {
	paths   []string
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens path and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and reads the events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	r := &Reader{paths: []string{path}, filter: filter}
	if err := r.advance(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewSegmentReader reads the events matching filter from every segment of a
// rotated event log, oldest first. See Segments.
func NewSegmentReader(path string, filter Filter) (*Reader, error) {
	paths := Segments(path)
	if len(paths) == 0 {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	r := &Reader{paths: paths, filter: filter}
	if err := r.advance(); err != nil {
		return nil, err
	}
	return r, nil
}

// advance opens the next file. It returns io.EOF when none is left.
func (r *Reader) advance() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	if len(r.paths) == 0 {
		return io.EOF
	}

	f, err := os.Open(r.paths[0])
	if err != nil {
		return err
	}
	r.paths = r.paths[1:]
	r.file = f
	r.decoder = eventDecMode.NewDecoder(f)
	return nil
}

// Next returns the next matching event, or io.EOF after the last file.
func (r *Reader) Next() (Event, error) {
	for r.file != nil {
		var rec eventRecord
		err := r.decoder.Decode(&rec)
		if err == io.EOF {
			if err := r.advance(); err != nil {
				return Event{}, err
			}
			continue
		}
		if err != nil {
			return Event{}, err
		}

		if event := Event(rec); r.filter.matches(event) {
			return event, nil
		}
	}
	return Event{}, io.EOF
}

// Close closes the current file.
func (r *Reader) Close() error {
	r.paths = nil
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
