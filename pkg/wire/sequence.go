package wire

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// SequenceReader reads a stream of documents: a CBOR sequence (RFC 8742)
// or whitespace-separated JSON values. Every document goes through the
// codec's checks, so a stream never yields a value a single decode would
// reject.
type SequenceReader struct {
	codec *Codec
	json  *json.Decoder
	cbor  *cbor.Decoder
	n     int
}

// NewSequenceReader creates a reader of documents in c's format.
func (c *Codec) NewSequenceReader(r io.Reader) *SequenceReader {
	s := &SequenceReader{codec: c}
	if c.format == FormatCBOR {
		s.cbor = decMode.NewDecoder(r)
	} else {
		s.json = json.NewDecoder(r)
	}
	return s
}

// Next decodes the next document into dst. It returns io.EOF after the last
// document. Errors carry the zero-based document index.
func (s *SequenceReader) Next(dst any) error {
	raw, err := s.raw()
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("document %d: %w", s.n, malformedErr("", "invalid sequence item", err))
	}

	if err := s.codec.DecodeInto(raw, dst); err != nil {
		return fmt.Errorf("document %d: %w", s.n, err)
	}
	s.n++
	return nil
}

func (s *SequenceReader) raw() ([]byte, error) {
	if s.cbor != nil {
		var raw cbor.RawMessage
		err := s.cbor.Decode(&raw)
		return raw, err
	}
	var raw json.RawMessage
	err := s.json.Decode(&raw)
	return raw, err
}

// Count returns the number of documents read so far.
func (s *SequenceReader) Count() int {
	return s.n
}

// SequenceWriter writes a stream of documents in a codec's format. JSON
// documents are newline-terminated.
type SequenceWriter struct {
	codec *Codec
	w     io.Writer
	cbor  *cbor.Encoder
}

// NewSequenceWriter creates a writer of documents in c's format.
func (c *Codec) NewSequenceWriter(w io.Writer) *SequenceWriter {
	s := &SequenceWriter{codec: c, w: w}
	if c.format == FormatCBOR {
		s.cbor = encMode.NewEncoder(w)
	}
	return s
}

// Write encodes v and appends it to the stream. Nothing is written when
// encoding fails.
func (s *SequenceWriter) Write(v any) error {
	data, err := s.codec.Encode(v)
	if err != nil {
		return err
	}
	if s.cbor != nil {
		return s.cbor.Encode(cbor.RawMessage(data))
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
