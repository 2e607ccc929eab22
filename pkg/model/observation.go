package model

import (
	"math"
	"time"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/units"
)

// Observation is one timestamped batch of sensor readings from a device.
type Observation struct {
	ID           int64           `json:"id"`
	DeviceID     ident.DeviceURN `json:"deviceId"`
	ObsTime      float64         `json:"obstime"` // epoch milliseconds
	Charging     int             `json:"charging"`
	Firmware     string          `json:"firmware"`
	WifiFirmware *string         `json:"wifiFirmware,omitempty"`
	Battery      float64         `json:"battery"` // fraction 0-1
	Temp         float64         `json:"temp"`    // Celsius
	Light        int             `json:"light"`
	Humidity     int             `json:"humidity"`
	XAxis        int             `json:"xaxis"`
	YAxis        int             `json:"yaxis"`
	ZAxis        int             `json:"zaxis"`
}

// ObsTimeSeconds returns the observation time in epoch seconds.
func (o Observation) ObsTimeSeconds() float64 {
	return o.ObsTime / 1000
}

// Time returns the observation time in UTC.
func (o Observation) Time() time.Time {
	sec, frac := math.Modf(o.ObsTimeSeconds())
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// IsCharging returns true if the device reported it was charging.
func (o Observation) IsCharging() bool {
	return o.Charging != 0
}

// Temperature returns the temperature in scale.
func (o Observation) Temperature(scale units.TemperatureScale) float64 {
	return scale.FromC(o.Temp)
}

// WifiFirmwareVersion returns the wifi firmware version, or "" if the device
// did not report one.
func (o Observation) WifiFirmwareVersion() string {
	if o.WifiFirmware == nil {
		return ""
	}
	return *o.WifiFirmware
}

// ObsTimeMillis converts t to the observation time encoding.
func ObsTimeMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e6
}
