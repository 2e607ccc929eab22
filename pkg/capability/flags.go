// Package capability defines the device capability bitmask.
package capability

import (
	"fmt"
	"strings"
)

// Flags is a set of device capability bits. Bits without a name are kept
// as-is so the raw integer always round-trips.
type Flags uint64

// Named capability bits. Bit 1 is unassigned.
const (
	// Locked marks a device that cannot be shared or claimed by another
	// account.
	Locked Flags = 1 << 0

	// TemperatureCapable marks a device with a temperature sensor.
	TemperatureCapable Flags = 1 << 2

	// MovementCapable marks a device with an accelerometer.
	MovementCapable Flags = 1 << 3

	// LightCapable marks a device with a light sensor.
	LightCapable Flags = 1 << 4
)

// None is the empty set.
const None Flags = 0

// named lists the named bits in ascending order.
var named = []Flags{Locked, TemperatureCapable, MovementCapable, LightCapable}

// knownMask covers every named bit.
const knownMask = Locked | TemperatureCapable | MovementCapable | LightCapable

// FromRaw wraps a raw integer. Every bit is preserved.
func FromRaw(raw uint64) Flags {
	return Flags(raw)
}

// Union returns the bitwise OR of all flags.
func Union(flags ...Flags) Flags {
	var out Flags
	for _, f := range flags {
		out |= f
	}
	return out
}

// Union returns f with all the other flags added.
func (f Flags) Union(others ...Flags) Flags {
	return f | Union(others...)
}

// Contains returns true if any bit of flag is set in f.
func (f Flags) Contains(flag Flags) bool {
	return f&flag != 0
}

// Raw returns the exact integer the set was built from.
func (f Flags) Raw() uint64 {
	return uint64(f)
}

// Unknown returns the bits of f that have no name.
func (f Flags) Unknown() Flags {
	return f &^ knownMask
}

// IsEmpty returns true if no bit is set.
func (f Flags) IsEmpty() bool {
	return f == None
}

// String returns the set bits as a "|"-joined list of names. Unnamed bits are
// rendered together as a hex value.
func (f Flags) String() string {
	if f == None {
		return "NONE"
	}
	var parts []string
	for _, b := range named {
		if f&b != 0 {
			parts = append(parts, bitName(b))
		}
	}
	if u := f.Unknown(); u != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint64(u)))
	}
	return strings.Join(parts, "|")
}

func bitName(b Flags) string {
	switch b {
	case Locked:
		return "LOCKED"
	case TemperatureCapable:
		return "TEMPERATURE_CAPABLE"
	case MovementCapable:
		return "MOVEMENT_CAPABLE"
	case LightCapable:
		return "LIGHT_CAPABLE"
	default:
		return "UNKNOWN"
	}
}
