package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionInverse(t *testing.T) {
	for _, c := range []float64{-273.15, -40, -17.5, 0, 0.1, 21.37, 37, 100, 1e6} {
		back := Fahrenheit2Celsius(Celsius2Fahrenheit(c))
		assert.InDelta(t, c, back, 1e-9, "c=%v", c)
	}
	assert.Equal(t, 32.0, Celsius2Fahrenheit(0))
	assert.Equal(t, 100.0, Fahrenheit2Celsius(212))
	assert.Equal(t, -40.0, Fahrenheit2Celsius(-40))
}

func TestConversionNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Fahrenheit2Celsius(math.NaN())))
	assert.True(t, math.IsNaN(Celsius2Fahrenheit(math.NaN())))
}

func TestNearestFive(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.24, 0.0},
		{0.26, 0.5},
		{1.76, 2.0},
		{0.25, 0.5},
		{-0.25, -0.5},
		{-1.3, -1.5},
		{21.74, 21.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NearestFive(tt.in), "NearestFive(%v)", tt.in)
	}
	assert.True(t, math.IsNaN(NearestFive(math.NaN())))
}

func TestOneDecimalPlace(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{32, "32.0"},
		{2.3, "2.3"},
		{2.39, "2.3"},
		{-4.56, "-4.5"},
		{21.5, "21.5"},
		{1e21, "1000000000000000000000.0"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OneDecimalPlace(tt.in), "OneDecimalPlace(%v)", tt.in)
	}
}

func TestScaleFormat(t *testing.T) {
	assert.Equal(t, "0.0ºC", Celsius.Format(0.0))
	assert.Equal(t, "32.0ºF", Fahrenheit.Format(32.0))
	assert.Equal(t, "32.0ºF", Fahrenheit.FormatC(0.0))
	assert.Equal(t, "21.5ºC", Celsius.FormatC(21.5))
}

func TestScaleConversions(t *testing.T) {
	assert.Equal(t, 25.0, Celsius.AsC(25))
	assert.Equal(t, 25.0, Celsius.FromC(25))
	assert.InDelta(t, 100.0, Fahrenheit.AsC(212), 1e-9)
	assert.InDelta(t, 212.0, Fahrenheit.FromC(100), 1e-9)

	for _, s := range []TemperatureScale{Celsius, Fahrenheit} {
		assert.True(t, math.IsNaN(s.AsC(math.NaN())), s.String())
		assert.True(t, math.IsNaN(s.FromC(math.NaN())), s.String())
		assert.Equal(t, "NaN"+s.Unit(), s.Format(math.NaN()))
		assert.Equal(t, "NaN"+s.Unit(), s.FormatC(math.NaN()))
	}
}

func TestScaleFromLimit(t *testing.T) {
	assert.Equal(t, Fahrenheit, ScaleFromLimit(1))
	assert.Equal(t, Celsius, ScaleFromLimit(0))
	assert.Equal(t, Celsius, ScaleFromLimit(7))
	assert.Equal(t, Celsius, ScaleFromLimit(math.NaN()))
	assert.Equal(t, "fahrenheit", Fahrenheit.String())
	assert.Equal(t, "unknown", TemperatureScale(9).String())
}
