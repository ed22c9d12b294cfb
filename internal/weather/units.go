package weather

import "github.com/i474232898/weather-daylight-etl/internal/common"

// InchesToMillimeters converts a precipitation amount.
func InchesToMillimeters(v float64) float64 {
	return common.Round5(v * 25.4)
}

// FahrenheitToCelsius converts a temperature.
func FahrenheitToCelsius(v float64) float64 {
	return common.Round5((v - 32) * 5 / 9)
}

// KnotsToMetersPerSecond converts a wind speed.
func KnotsToMetersPerSecond(v float64) float64 {
	return common.Round5(v * 0.514444)
}

// FeetToMeters converts a distance.
func FeetToMeters(v float64) float64 {
	return common.Round5(v * 0.3048)
}
