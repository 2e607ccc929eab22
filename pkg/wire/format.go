package wire

import (
	"fmt"
	"mime"
	"strings"
)

// Format is a wire encoding.
type Format uint8

const (
	// FormatJSON is JSON (RFC 8259).
	FormatJSON Format = 0
	// FormatCBOR is CBOR (RFC 8949).
	FormatCBOR Format = 1
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

// String returns the short format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// IsValid returns true if the format is known.
func (f Format) IsValid() bool {
	return f <= FormatCBOR
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	if f == FormatCBOR {
		return contentTypeCBOR
	}
	return contentTypeJSON
}

// ParseFormat accepts a short name ("json", "cbor") or a media type
// ("application/cbor; charset=..."). Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimSpace(s)
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		s = mt
	}
	switch strings.ToLower(s) {
	case "json", contentTypeJSON:
		return FormatJSON, nil
	case "cbor", contentTypeCBOR:
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("unknown wire format %q", s)
	}
}
