package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

func ptr[T any](v T) *T { return &v }

func sampleRows() []weather.FinalRow {
	return []weather.FinalRow{
		{
			Date:                 "2025-06-16",
			Datetime:             "2025-06-16 00:00:00",
			Temperature2mCelsius: ptr(10.0),
			RainMM:               ptr(2.54),
			DaylightHours:        ptr(17.31667),
			SunriseISO:           ptr("2025-06-16T04:52"),
			SunsetISO:            ptr("2025-06-16T22:11"),
			AvgTemperature2m24h:  ptr(12.5),
			TotalRain24h:         ptr(0.0),
		},
		{
			Date:                 "2025-06-16",
			Datetime:             "2025-06-16 01:00:00",
			Temperature2mCelsius: ptr(15.0),
			AvgTemperature2m24h:  ptr(12.5),
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleRows()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(weather.FinalColumns, ";"), lines[0])

	fields := strings.Split(lines[1], ";")
	require.Len(t, fields, len(weather.FinalColumns))
	assert.Equal(t, "2025-06-16", fields[0])
	assert.Equal(t, "2025-06-16 00:00:00", fields[1])
	assert.Equal(t, "", fields[2])
	assert.Equal(t, "10.0", fields[4])
	assert.Equal(t, "2.54", fields[10])
	assert.Equal(t, "17.31667", fields[13])
	assert.Equal(t, "2025-06-16T04:52", fields[14])
	assert.Equal(t, "12.5", fields[16])
	assert.Equal(t, "0.0", fields[25])

	fields = strings.Split(lines[2], ";")
	assert.Equal(t, "", fields[14])
	assert.Equal(t, "", fields[25])
}

func TestFormatFloatMatchesPythonRepr(t *testing.T) {
	cases := map[float64]string{
		0:           "0.0",
		10:          "10.0",
		2.54:        "2.54",
		-40:         "-40.0",
		0.0001:      "0.0001",
		0.00001:     "1e-05",
		0.000015:    "1.5e-05",
		-0.00003:    "-3e-05",
		123456789.5: "123456789.5",
		1e15:        "1000000000000000.0",
		1e16:        "1e+16",
		2.5e17:      "2.5e+17",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatFloat(ptr(in)), "formatting %v", in)
	}
	assert.Equal(t, "", formatFloat(nil))
}

func TestCSVSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "final_table.csv")
	sink := NewCSVSink(path)
	assert.Equal(t, "csv", sink.Name())

	require.NoError(t, sink.Write(context.Background(), sampleRows()))
	require.NoError(t, sink.Write(context.Background(), sampleRows()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestCSVSinkCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final_table.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, NewCSVSink(path).Write(ctx, sampleRows()))
	assert.NoFileExists(t, path)
}

func TestParquetSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final_table.parquet")
	sink := NewParquetSink(path)
	assert.Equal(t, "parquet", sink.Name())

	require.NoError(t, sink.Write(context.Background(), sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestSQLiteSinkReplacesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "final_table.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()
	assert.Equal(t, "sqlite", sink.Name())

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, sampleRows()))
	require.NoError(t, sink.Write(ctx, sampleRows()))

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, sink.Write(ctx, nil))
	n, err = sink.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteSinkKeepsRepeatedLocalHours(t *testing.T) {
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "final_table.db"))
	require.NoError(t, err)
	defer sink.Close()

	// A DST fall-back repeats the same wall-clock hour.
	rows := []weather.FinalRow{
		{Date: "2025-10-26", Datetime: "2025-10-26 02:00:00", Temperature2mCelsius: ptr(8.0)},
		{Date: "2025-10-26", Datetime: "2025-10-26 02:00:00", Temperature2mCelsius: ptr(7.5)},
	}
	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, rows))

	n, err := sink.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	// The caller's rows are not modified by the insert.
	assert.Zero(t, rows[0].ID)
	assert.Zero(t, rows[1].ID)
}
