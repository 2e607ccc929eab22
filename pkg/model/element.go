package model

import (
	"fmt"
	"math"
)

// Element names one kind of reading in an observation. Values are
// append-only.
type Element uint8

// Observation elements.
const (
	ElementDeviceID Element = iota
	ElementFirmwareVersion
	ElementBatteryLevel
	ElementCharging
	ElementTemperature
	ElementLightLevel
	ElementRelativeHumidity
	ElementRelativeTemperature
	ElementAcceleration // x, y and z axes
)

var elementNames = [...]string{
	ElementDeviceID:            "deviceId",
	ElementFirmwareVersion:     "firmwareVersion",
	ElementBatteryLevel:        "batteryLevel",
	ElementCharging:            "charging",
	ElementTemperature:         "temperature",
	ElementLightLevel:          "lightLevel",
	ElementRelativeHumidity:    "relativeHumidity",
	ElementRelativeTemperature: "relativeTemperature",
	ElementAcceleration:        "acceleration",
}

// Elements returns every named element in numeric order.
func Elements() []Element {
	out := make([]Element, len(elementNames))
	for i := range elementNames {
		out[i] = Element(i)
	}
	return out
}

// IsValid returns true if e is a named element.
func (e Element) IsValid() bool {
	return int(e) < len(elementNames)
}

// String returns the element name, or "Element(n)" for unnamed values.
func (e Element) String() string {
	if e.IsValid() {
		return elementNames[e]
	}
	return fmt.Sprintf("Element(%d)", uint8(e))
}

// Reading returns the numeric value of element e in o. Elements without a
// numeric reading (device id, firmware, relative temperature) report false.
// Acceleration is the magnitude of the three axes.
func (o Observation) Reading(e Element) (float64, bool) {
	switch e {
	case ElementBatteryLevel:
		return o.Battery, true
	case ElementCharging:
		return float64(o.Charging), true
	case ElementTemperature:
		return o.Temp, true
	case ElementLightLevel:
		return float64(o.Light), true
	case ElementRelativeHumidity:
		return float64(o.Humidity), true
	case ElementAcceleration:
		return o.Acceleration(), true
	}
	return 0, false
}

// Acceleration returns the magnitude of the acceleration vector.
func (o Observation) Acceleration() float64 {
	x, y, z := float64(o.XAxis), float64(o.YAxis), float64(o.ZAxis)
	return math.Sqrt(x*x + y*y + z*z)
}
