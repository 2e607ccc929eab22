package push

import (
	"fmt"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/limit"
	"github.com/qbiq/biq-go/pkg/model"
	"github.com/qbiq/biq-go/pkg/units"
)

// Notification is an alert raised for a device.
type Notification struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Kind     model.Element   `json:"kind"` // reading that crossed the limit
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Limit    limit.Setting   `json:"limit"`
	ObsTime  float64         `json:"obstime"` // epoch milliseconds of the observation
}

// LimitSet is the retained message describing a device's push limits.
type LimitSet struct {
	DeviceID ident.DeviceURN `json:"deviceId"`
	Limits   []limit.Setting `json:"limits"`
}

// NewLimitSet collects the limits that belong to device. Limits of other
// devices are skipped.
func NewLimitSet(device ident.DeviceURN, limits []limit.DevicePushLimit) LimitSet {
	set := LimitSet{DeviceID: device, Limits: []limit.Setting{}}
	for _, l := range limits {
		if l.DeviceID == device {
			set.Limits = append(set.Limits, l.Setting())
		}
	}
	return set
}

// Composer turns observations into notifications.
type Composer struct {
	// Name labels the device in notification titles. Optional; the URN is
	// used when empty.
	Name string
}

// Compose checks obs against the push limits of its device. A Notifications
// limit with value 0 silences the device. A TempScale limit selects the scale
// temperatures are reported in. Unrecognized limit types are skipped.
func (c Composer) Compose(obs model.Observation, limits []limit.DevicePushLimit) []Notification {
	scale := units.Celsius
	var thresholds []limit.DevicePushLimit

	for _, l := range limits {
		if l.DeviceID != obs.DeviceID {
			continue
		}
		switch l.Type.Resolve() {
		case limit.Notifications:
			if l.Value == 0 {
				return nil
			}
		case limit.TempScale:
			scale = units.ScaleFromLimit(l.Value)
		default:
			thresholds = append(thresholds, l)
		}
	}

	name := c.Name
	if name == "" {
		name = obs.DeviceID.String()
	}

	var out []Notification
	for _, l := range thresholds {
		kind, ok := ElementOf(l.Type)
		if !ok {
			continue
		}
		reading, _ := obs.Reading(kind)
		body, crossed := check(reading, l, scale)
		if !crossed {
			continue
		}
		out = append(out, Notification{
			DeviceID: obs.DeviceID,
			Kind:     kind,
			Title:    fmt.Sprintf("%s: %s", name, l.Type),
			Body:     body,
			Limit:    l.Setting(),
			ObsTime:  obs.ObsTime,
		})
	}
	return out
}

// ElementOf returns the observation element a threshold limit type is
// checked against.
func ElementOf(t limit.Type) (model.Element, bool) {
	switch t.Resolve() {
	case limit.TempHigh, limit.TempLow:
		return model.ElementTemperature, true
	case limit.BatteryLevel:
		return model.ElementBatteryLevel, true
	case limit.LightLevel:
		return model.ElementLightLevel, true
	case limit.HumidityLevel:
		return model.ElementRelativeHumidity, true
	case limit.MovementLevel:
		return model.ElementAcceleration, true
	}
	return 0, false
}

// check returns a message and true if reading crosses the threshold of l.
func check(reading float64, l limit.DevicePushLimit, scale units.TemperatureScale) (string, bool) {
	switch l.Type.Resolve() {
	case limit.TempHigh:
		if reading > l.Value {
			return fmt.Sprintf("Temperature %s is above %s", scale.FormatC(reading), scale.FormatC(l.Value)), true
		}
	case limit.TempLow:
		if reading < l.Value {
			return fmt.Sprintf("Temperature %s is below %s", scale.FormatC(reading), scale.FormatC(l.Value)), true
		}
	case limit.BatteryLevel:
		if reading < l.Value {
			return fmt.Sprintf("Battery at %.0f%%", reading*100), true
		}
	case limit.LightLevel:
		if reading > l.Value {
			return fmt.Sprintf("Light level %.0f exceeds %s", reading, units.OneDecimalPlace(l.Value)), true
		}
	case limit.HumidityLevel:
		if reading > l.Value {
			return fmt.Sprintf("Humidity %.0f%% exceeds %s%%", reading, units.OneDecimalPlace(l.Value)), true
		}
	case limit.MovementLevel:
		if reading > l.Value {
			return fmt.Sprintf("Movement %s exceeds %s", units.OneDecimalPlace(reading), units.OneDecimalPlace(l.Value)), true
		}
	}
	return "", false
}
