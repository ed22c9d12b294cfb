package weather

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDocument(t *testing.T, body string) Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return doc
}

func TestDecodeObservations(t *testing.T) {
	doc := mustDocument(t, `{
		"latitude": 55.03,
		"hourly": {
			"time": ["2025-06-16T00:00", "2025-06-16T01:00"],
			"temperature_2m": [50.0, null],
			"rain": [0.01, 0],
			"weather_code": [3, 61]
		},
		"daily": {
			"time": ["2025-06-16"],
			"sunrise": ["2025-06-16T04:52"],
			"sunset": ["2025-06-16T22:11"],
			"daylight_duration": [62340.5]
		}
	}`)

	raw, err := DecodeObservations(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-06-16T00:00", "2025-06-16T01:00"}, raw.Hourly.Time)
	require.Contains(t, raw.Hourly.Columns, FieldTemperature2m)
	temp := raw.Hourly.Columns[FieldTemperature2m]
	require.Len(t, temp, 2)
	require.NotNil(t, temp[0])
	assert.Equal(t, 50.0, *temp[0])
	assert.Nil(t, temp[1])
	assert.Equal(t, 61.0, *raw.Hourly.Columns[FieldWeatherCode][1])
	assert.NotContains(t, raw.Hourly.Columns, FieldSnowfall)

	assert.Equal(t, []string{"2025-06-16"}, raw.Daily.Time)
	assert.Equal(t, []string{"2025-06-16T04:52"}, raw.Daily.Sunrise)
	assert.Equal(t, []string{"2025-06-16T22:11"}, raw.Daily.Sunset)
	assert.Equal(t, 62340.5, *raw.Daily.DaylightDuration[0])
}

func TestDecodeObservationsMissingSections(t *testing.T) {
	_, err := DecodeObservations(mustDocument(t, `{"latitude": 1}`))
	require.Error(t, err)

	var shapeErr *DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Contains(t, err.Error(), `"hourly"`)
	assert.Contains(t, err.Error(), `"daily"`)
}

func TestDecodeObservationsRaggedColumn(t *testing.T) {
	doc := mustDocument(t, `{
		"hourly": {
			"time": ["2025-06-16T00:00", "2025-06-16T01:00"],
			"temperature_2m": [50.0],
			"rain": [0, 0, 0]
		},
		"daily": {
			"time": ["2025-06-16"],
			"sunrise": ["2025-06-16T04:52"],
			"sunset": ["2025-06-16T22:11"]
		}
	}`)

	_, err := DecodeObservations(doc)
	var shapeErr *DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Contains(t, err.Error(), "hourly.temperature_2m")
	assert.Contains(t, err.Error(), "hourly.rain")
}

func TestDecodeObservationsBadTypes(t *testing.T) {
	doc := mustDocument(t, `{
		"hourly": {"time": ["2025-06-16T00:00"], "temperature_2m": ["warm"]},
		"daily": {"time": ["2025-06-16"], "sunrise": ["2025-06-16T04:52"]}
	}`)

	_, err := DecodeObservations(doc)
	var shapeErr *DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Contains(t, err.Error(), "hourly.temperature_2m")
	assert.Contains(t, err.Error(), `"sunset"`)
}
