// Package units holds the numeric conversions used when presenting
// observations. Temperatures are stored in Celsius; every other scale is a
// derived view.
package units

import (
	"math"
	"strconv"
	"strings"
)

// Fahrenheit2Celsius converts a Fahrenheit temperature to Celsius.
func Fahrenheit2Celsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Celsius2Fahrenheit converts a Celsius temperature to Fahrenheit.
func Celsius2Fahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// NearestFive rounds to the nearest 0.5, halves away from zero.
func NearestFive(x float64) float64 {
	return math.Round(x*2) / 2
}

// OneDecimalPlace renders x with exactly one fractional digit. Digits past
// the tenths are truncated, not rounded, on the shortest decimal form of x.
func OneDecimalPlace(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + ".0"
	}
	return s[:dot+2]
}
