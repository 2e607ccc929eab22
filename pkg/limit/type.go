package limit

// Type is a device-limit tag. Values are stable and new types are only ever
// appended.
type Type uint8

const (
	// TempHigh is the upper temperature alert threshold (Celsius).
	TempHigh Type = 0

	// TempLow is the lower temperature alert threshold (Celsius).
	TempLow Type = 1

	// MovementLevel is the acceleration alert threshold.
	MovementLevel Type = 2

	// BatteryLevel is the low-battery alert threshold (fraction 0-1).
	BatteryLevel Type = 3

	// Notifications toggles push notifications (0 = off, 1 = on).
	Notifications Type = 4

	// TempScale selects the display scale (0 = Celsius, 1 = Fahrenheit).
	TempScale Type = 5

	// Colour is the display colour of the device, as a hex string.
	Colour Type = 6

	// Interval is the sampling interval in seconds.
	Interval Type = 7

	// ReportFormat names the format the device reports in.
	ReportFormat Type = 8

	// ReportBufferCapacity is the number of samples buffered before upload.
	ReportBufferCapacity Type = 9

	// LightLevel is the light alert threshold.
	LightLevel Type = 10

	// HumidityLevel is the humidity alert threshold.
	HumidityLevel Type = 11
)

// Unrecognized is the resolved form of any byte outside the enumeration.
const Unrecognized Type = 0xFF

// lastKnown is the highest assigned tag.
const lastKnown = HumidityLevel

// Resolve maps a raw byte to a named type, or Unrecognized. It never fails.
func Resolve(raw byte) Type {
	t := Type(raw)
	if t.Known() {
		return t
	}
	return Unrecognized
}

// AllTypes returns every named type in tag order.
func AllTypes() []Type {
	out := make([]Type, 0, int(lastKnown)+1)
	for t := TempHigh; t <= lastKnown; t++ {
		out = append(out, t)
	}
	return out
}

// Known returns true if t is a named type.
func (t Type) Known() bool {
	return t <= lastKnown
}

// Raw returns the tag byte.
func (t Type) Raw() byte {
	return byte(t)
}

// Resolve returns t if it is named, otherwise Unrecognized.
func (t Type) Resolve() Type {
	return Resolve(byte(t))
}

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TempHigh:
		return "tempHigh"
	case TempLow:
		return "tempLow"
	case MovementLevel:
		return "movementLevel"
	case BatteryLevel:
		return "batteryLevel"
	case Notifications:
		return "notifications"
	case TempScale:
		return "tempScale"
	case Colour:
		return "colour"
	case Interval:
		return "interval"
	case ReportFormat:
		return "reportFormat"
	case ReportBufferCapacity:
		return "reportBufferCapacity"
	case LightLevel:
		return "lightLevel"
	case HumidityLevel:
		return "humidityLevel"
	default:
		return "unrecognized"
	}
}

// Domain returns the value domain declared for t.
func (t Type) Domain() Domain {
	switch t {
	case TempHigh, TempLow, MovementLevel, BatteryLevel, Interval,
		ReportBufferCapacity, LightLevel, HumidityLevel:
		return DomainFloat
	case Colour, ReportFormat:
		return DomainString
	case Notifications, TempScale:
		return DomainFloatWithString
	default:
		return DomainUnknown
	}
}

// Domain describes which of a limit's values are meaningful for its type.
type Domain uint8

const (
	// DomainUnknown is the domain of unrecognized types.
	DomainUnknown Domain = 0

	// DomainFloat uses the numeric value only.
	DomainFloat Domain = 1

	// DomainString uses the string value only.
	DomainString Domain = 2

	// DomainFloatWithString uses the numeric value and, optionally, a string.
	DomainFloatWithString Domain = 3
)

// String returns the domain name.
func (d Domain) String() string {
	switch d {
	case DomainFloat:
		return "float"
	case DomainString:
		return "string"
	case DomainFloatWithString:
		return "float+string?"
	default:
		return "unknown"
	}
}
