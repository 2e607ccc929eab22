package log

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Event is one encode or decode performed by a codec.
type Event struct {
	// Timestamp when the operation finished.
	Timestamp time.Time `cbor:"1,keyasint"`

	// Direction is DirectionIn for decode, DirectionOut for encode.
	Direction Direction `cbor:"2,keyasint"`

	// Format is the wire format name ("json" or "cbor").
	Format string `cbor:"3,keyasint"`

	// Envelope is the Go type name of the value encoded or decoded.
	Envelope string `cbor:"4,keyasint"`

	// Size is the document size in bytes (0 when encoding failed).
	Size int `cbor:"5,keyasint"`

	// Deprecated lists deprecated keys found in a decoded document, as
	// "Entity.key".
	Deprecated []string `cbor:"6,keyasint,omitempty"`

	// Error is set when the operation failed.
	Error *ErrorEventData `cbor:"7,keyasint,omitempty"`

	// Source optionally names where the document came from (remote address,
	// file name).
	Source string `cbor:"8,keyasint,omitempty"`
}

// Failed returns true if the event records a failure.
func (e Event) Failed() bool {
	return e.Error != nil
}

// ErrorEventData describes a failed operation.
type ErrorEventData struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Path locates the offending field in the document, if known.
	Path string `cbor:"2,keyasint,omitempty"`
}

// Direction indicates whether a document was read or written.
type Direction uint8

const (
	// DirectionIn indicates a decoded (incoming) document.
	DirectionIn Direction = 0
	// DirectionOut indicates an encoded (outgoing) document.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// eventRecord has Event's fields without its methods, so that the CBOR
// codec does not recurse into MarshalBinary.
type eventRecord Event

var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	var err error

	eventEncMode, err = cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("event CBOR encoder mode: %v", err))
	}

	eventDecMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("event CBOR decoder mode: %v", err))
	}
}

// MarshalBinary encodes the event as a CBOR map with integer keys.
func (e Event) MarshalBinary() ([]byte, error) {
	return eventEncMode.Marshal(eventRecord(e))
}

// UnmarshalBinary decodes a single CBOR-encoded event.
func (e *Event) UnmarshalBinary(data []byte) error {
	var rec eventRecord
	if err := eventDecMode.Unmarshal(data, &rec); err != nil {
		return err
	}
	*e = Event(rec)
	return nil
}
