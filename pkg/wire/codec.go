package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/qbiq/biq-go/pkg/log"
	"github.com/qbiq/biq-go/pkg/schema"
)

// encMode is the CBOR encoder mode for BIQ documents.
// Configured for deterministic encoding.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for typed decoding.
var decMode cbor.DecMode

// treeDecMode decodes CBOR into the generic tree used for checking.
var treeDecMode cbor.DecMode

func init() {
	var err error

	// Configure encoder for deterministic output
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix, // Unix timestamps
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Configure decoder to be lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet, // Ignore duplicate keys (last wins)
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
		FieldNameMatching: cbor.FieldNameMatchingCaseSensitive,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}

	decOpts.DefaultMapType = reflect.TypeOf(map[string]any(nil))
	treeDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR tree decoder mode: %v", err))
	}
}

// Options configures a Codec.
type Options struct {
	// Format selects the wire encoding.
	Format Format

	// Logger receives operational debug and warning messages. Optional.
	Logger *slog.Logger

	// EventLogger receives one event per encode or decode. Optional.
	EventLogger log.Logger

	// Schema is consulted for deprecated keys. Nil disables reporting.
	Schema *schema.Manifest
}

// DefaultOptions returns JSON options checking against the current schema
// generation.
func DefaultOptions() Options {
	return Options{
		Format: FormatJSON,
		Schema: schema.MustCurrent(),
	}
}

// Codec encodes and decodes documents in one format.
// It is safe for concurrent use.
type Codec struct {
	format Format
	logger *slog.Logger
	events log.Logger
	schema *schema.Manifest
	source string
}

// NewCodec creates a codec.
func NewCodec(opts Options) *Codec {
	return &Codec{
		format: opts.Format,
		logger: opts.Logger,
		events: opts.EventLogger,
		schema: opts.Schema,
	}
}

// Report describes a successfully decoded document.
type Report struct {
	// Deprecated lists deprecated keys found, as "Entity.key".
	Deprecated []string
}

// Format returns the codec's wire format.
func (c *Codec) Format() Format {
	return c.format
}

// WithSource returns a copy of the codec that tags events with src.
func (c *Codec) WithSource(src string) *Codec {
	cp := *c
	cp.source = src
	return &cp
}

// WithFormat returns a copy of the codec using format f.
func (c *Codec) WithFormat(f Format) *Codec {
	cp := *c
	cp.format = f
	return &cp
}

// Encode encodes v. The result is checked against v's own type so that an
// encoded document always decodes; a required nil slice, for instance, is
// rejected instead of written as null.
func (c *Codec) Encode(v any) ([]byte, error) {
	data, err := c.encode(v)
	if err != nil {
		err = fmt.Errorf("encode %s: %w", envelopeName(v), err)
		c.emit(log.DirectionOut, v, 0, nil, err)
		return nil, err
	}
	c.emit(log.DirectionOut, v, len(data), nil, nil)
	return data, nil
}

func (c *Codec) encode(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch c.format {
	case FormatJSON:
		data, err = json.Marshal(v)
	case FormatCBOR:
		data, err = encMode.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported format %s", c.format)
	}
	if err != nil {
		return nil, err
	}

	if t := reflect.TypeOf(v); t != nil {
		tree, err := c.tree(data)
		if err != nil {
			return nil, err
		}
		ck := checker{}
		if err := ck.check("", t, tree); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// DecodeInto decodes data into dst, which must be a non-nil pointer.
func (c *Codec) DecodeInto(data []byte, dst any) error {
	_, err := c.DecodeReport(data, dst)
	return err
}

// DecodeReport decodes data into dst and reports deprecated keys.
func (c *Codec) DecodeReport(data []byte, dst any) (Report, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Report{}, fmt.Errorf("decode target must be a non-nil pointer, got %T", dst)
	}

	report, err := c.decode(data, rv.Type().Elem(), dst)
	c.emit(log.DirectionIn, dst, len(data), report.Deprecated, err)

	if err == nil && len(report.Deprecated) > 0 {
		c.warnLog("deprecated keys in document",
			"envelope", envelopeName(dst), "keys", report.Deprecated)
	}
	return report, err
}

func (c *Codec) decode(data []byte, t reflect.Type, dst any) (Report, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Report{}, malformed("", "empty document")
	}

	tree, err := c.tree(data)
	if err != nil {
		return Report{}, err
	}

	ck := checker{}
	if c.schema != nil {
		ck.schema = c.schema
	}
	if err := ck.check("", t, tree); err != nil {
		return Report{}, err
	}

	switch c.format {
	case FormatJSON:
		err = json.Unmarshal(data, dst)
	case FormatCBOR:
		err = decMode.Unmarshal(data, dst)
	}
	if err != nil {
		return Report{}, typeError(err)
	}

	return Report{Deprecated: ck.deprecated}, nil
}

// tree parses data into generic maps and slices.
func (c *Codec) tree(data []byte) (any, error) {
	var tree any
	switch c.format {
	case FormatJSON:
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, malformedErr("", "invalid JSON", err)
		}
	case FormatCBOR:
		if err := treeDecMode.Unmarshal(data, &tree); err != nil {
			return nil, malformedErr("", "invalid CBOR", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %s", c.format)
	}
	return tree, nil
}

// typeError converts a typed decode failure into a MalformedError.
func typeError(err error) error {
	var jsonType *json.UnmarshalTypeError
	if errors.As(err, &jsonType) {
		return malformedErr(jsonType.Field, "type mismatch", err)
	}
	var cborType *cbor.UnmarshalTypeError
	if errors.As(err, &cborType) {
		return malformedErr("", "type mismatch", err)
	}
	return malformedErr("", "invalid value", err)
}

func (c *Codec) emit(dir log.Direction, v any, size int, deprecated []string, err error) {
	if c.events == nil {
		if err != nil {
			c.debugLog("codec failure", "direction", dir.String(), "envelope", envelopeName(v), "error", err)
		}
		return
	}

	event := log.Event{
		Timestamp:  time.Now(),
		Direction:  dir,
		Format:     c.format.String(),
		Envelope:   envelopeName(v),
		Size:       size,
		Deprecated: deprecated,
		Source:     c.source,
	}
	if err != nil {
		event.Error = &log.ErrorEventData{Message: err.Error(), Path: pathOf(err)}
	}
	c.events.Log(event)
}

// debugLog logs a debug message if logging is enabled.
func (c *Codec) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// warnLog logs a warning if logging is enabled.
func (c *Codec) warnLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

// envelopeName returns the type name used in events, without pointers.
func envelopeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Decode decodes data into a new T.
func Decode[T any](c *Codec, data []byte) (T, error) {
	var v T
	err := c.DecodeInto(data, &v)
	return v, err
}

// ---------------------------------------------------------------------------
// Package-level helpers
// ---------------------------------------------------------------------------

var (
	defaultJSON = NewCodec(DefaultOptions())
	defaultCBOR = NewCodec(Options{Format: FormatCBOR, Schema: schema.MustCurrent()})
)

// JSON returns the default JSON codec.
func JSON() *Codec {
	return defaultJSON
}

// CBOR returns the default CBOR codec.
func CBOR() *Codec {
	return defaultCBOR
}

// Marshal encodes a value to JSON with the default codec.
func Marshal(v any) ([]byte, error) {
	return defaultJSON.Encode(v)
}

// Unmarshal decodes JSON into v with the default codec.
func Unmarshal(data []byte, v any) error {
	return defaultJSON.DecodeInto(data, v)
}


// Convert re-encodes a document of type T from one codec's format into
// another's. The document is fully decoded and checked on the way.
func Convert[T any](from, to *Codec, data []byte) ([]byte, error) {
	v, err := Decode[T](from, data)
	if err != nil {
		return nil, err
	}
	return to.Encode(v)
}

// Clone creates a deep copy by re-encoding in canonical CBOR.
func Clone[T any](v T) (T, error) {
	var result T
	data, err := encMode.Marshal(v)
	if err != nil {
		return result, err
	}
	err = decMode.Unmarshal(data, &result)
	return result, err
}

// Equal compares two values by their canonical CBOR encoding.
func Equal(a, b any) bool {
	dataA, errA := encMode.Marshal(a)
	dataB, errB := encMode.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(dataA, dataB)
}
