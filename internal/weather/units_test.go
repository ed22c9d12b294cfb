package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInchesToMillimeters(t *testing.T) {
	assert.Equal(t, 0.0, InchesToMillimeters(0))
	assert.Equal(t, 25.4, InchesToMillimeters(1))
	assert.Equal(t, 12.7, InchesToMillimeters(0.5))

	// Linear within rounding.
	for _, x := range []float64{0.01, 0.13, 0.5, 2.75} {
		assert.InDelta(t, 2*InchesToMillimeters(x), InchesToMillimeters(2*x), 1e-5)
	}
}

func TestFahrenheitToCelsius(t *testing.T) {
	assert.Equal(t, 0.0, FahrenheitToCelsius(32))
	assert.Equal(t, 100.0, FahrenheitToCelsius(212))
	assert.Equal(t, 20.0, FahrenheitToCelsius(68))
	assert.Equal(t, -40.0, FahrenheitToCelsius(-40))
	assert.Equal(t, 21.11111, FahrenheitToCelsius(70))
}

func TestKnotsToMetersPerSecond(t *testing.T) {
	assert.Equal(t, 0.0, KnotsToMetersPerSecond(0))
	assert.Equal(t, 0.51444, KnotsToMetersPerSecond(1))
	assert.Equal(t, 5.14444, KnotsToMetersPerSecond(10))
}

func TestFeetToMeters(t *testing.T) {
	assert.Equal(t, 0.0, FeetToMeters(0))
	assert.Equal(t, 0.3048, FeetToMeters(1))
	assert.Equal(t, 3.048, FeetToMeters(10))
}
