// Package wire encodes and decodes BIQ documents.
//
// Entities and API envelopes are plain Go structs whose json tags are the
// wire keys. The same tags drive both supported formats:
//   - JSON, the primary format spoken by mobile and web clients
//   - CBOR (RFC 8949), a compact format for devices and event capture
//
// # Decoding
//
// Decoding is strict about structure and lenient about extras. A document
// is rejected with an error matching ErrMalformed when
//   - it is not an object where an entity is expected
//   - a required field is missing or null
//   - a value has the wrong type for its field
//
// Unknown keys are ignored. Keys the current schema generation marks as
// deprecated are accepted and reported to the codec's loggers.
//
// # Nullable vs Absent
//
// Optional fields are pointers tagged omitempty. On decode an explicit null
// and an absent key both leave the field nil. On encode a nil optional
// field is omitted, never written as null.
//
// Optional relations use a pointer to a slice so three states survive a
// round trip:
//   - nil: relation not requested (key absent)
//   - pointer to empty slice: requested, nothing related ([])
//   - pointer to non-empty slice: the related items
//
// # Determinism
//
// CBOR output is canonical (sorted keys, definite lengths), so Equal can
// compare two values by their encoding.
package wire
