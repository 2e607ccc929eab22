package ident

import (
	"strings"

	"github.com/google/uuid"
)

// LegacyURNPrefix is the namespace prefix first-generation devices were
// required to carry.
//
// Deprecated: the current schema accepts any non-empty device name and no
// longer enforces the prefix. It is kept to recognise and build legacy names.
const LegacyURNPrefix = "urn:qbiq:"

// DeviceURN identifies a physical telemetry device.
type DeviceURN string

// NewLegacyDeviceURN builds a first-generation device name from a vendor ID.
func NewLegacyDeviceURN(vendorID string) DeviceURN {
	return DeviceURN(LegacyURNPrefix + vendorID)
}

// String returns the URN as a plain string.
func (u DeviceURN) String() string {
	return string(u)
}

// IsZero returns true for the empty URN.
func (u DeviceURN) IsZero() bool {
	return u == ""
}

// HasLegacyPrefix returns true if the URN carries the first-generation prefix.
func (u DeviceURN) HasLegacyPrefix() bool {
	return strings.HasPrefix(string(u), LegacyURNPrefix)
}

// VendorID returns the vendor part of the URN: the legacy prefix is stripped
// when present, otherwise the URN is returned unchanged.
func (u DeviceURN) VendorID() string {
	return strings.TrimPrefix(string(u), LegacyURNPrefix)
}

// ID is the UUID identifier used for groups, memberships, permissions and
// accounts. It encodes as canonical hyphenated hex text.
type ID = uuid.UUID

// AccountID identifies an account.
//
// The first schema generation used a plain string here; see pkg/schema for
// the deprecation record.
type AccountID = ID

// Nil is the all-zero ID.
var Nil = uuid.Nil

// NewID returns a random (version 4) ID.
func NewID() ID {
	return uuid.New()
}

// ParseID parses the canonical text form of an ID.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParseID is like ParseID but panics on error. Intended for tests and
// constants.
func MustParseID(s string) ID {
	return uuid.MustParse(s)
}
