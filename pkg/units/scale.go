package units

// TemperatureScale selects the scale a temperature is displayed in.
type TemperatureScale uint8

const (
	// Celsius is the canonical storage scale.
	Celsius TemperatureScale = 0

	// Fahrenheit is a display-only scale.
	Fahrenheit TemperatureScale = 1
)

// ScaleFromLimit maps the value of a temperature-scale device limit to a
// scale. Anything other than 1 selects Celsius.
func ScaleFromLimit(value float64) TemperatureScale {
	if value == float64(Fahrenheit) {
		return Fahrenheit
	}
	return Celsius
}

// String returns the scale name.
func (s TemperatureScale) String() string {
	switch s {
	case Celsius:
		return "celsius"
	case Fahrenheit:
		return "fahrenheit"
	default:
		return "unknown"
	}
}

// Unit returns the unit suffix used by Format.
func (s TemperatureScale) Unit() string {
	if s == Fahrenheit {
		return "ºF"
	}
	return "ºC"
}

// AsC converts d, expressed in s, to Celsius.
func (s TemperatureScale) AsC(d float64) float64 {
	if s == Fahrenheit {
		return Fahrenheit2Celsius(d)
	}
	return d
}

// FromC converts the Celsius value d into s.
func (s TemperatureScale) FromC(d float64) float64 {
	if s == Fahrenheit {
		return Celsius2Fahrenheit(d)
	}
	return d
}

// Format renders d, already expressed in s, with one decimal place and the
// unit suffix.
func (s TemperatureScale) Format(d float64) string {
	return OneDecimalPlace(d) + s.Unit()
}

// FormatC converts the Celsius value d into s and formats it.
func (s TemperatureScale) FormatC(d float64) string {
	return s.Format(s.FromC(d))
}
