package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

// CSVSink writes the final table as a semicolon separated file with a header
// row. Existing files are overwritten.
type CSVSink struct {
	path string
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string {
	return "csv"
}

// Write replaces the file at the sink path with rows.
func (s *CSVSink) Write(ctx context.Context, rows []weather.FinalRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	if err := EncodeCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV writes the header and rows to w. Null values become empty fields.
func EncodeCSV(w io.Writer, rows []weather.FinalRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(weather.FinalColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r weather.FinalRow) []string {
	return []string{
		r.Date,
		r.Datetime,
		formatFloat(r.WindSpeed10mMPerS),
		formatFloat(r.WindSpeed80mMPerS),
		formatFloat(r.Temperature2mCelsius),
		formatFloat(r.ApparentTemperatureCelsius),
		formatFloat(r.Temperature80mCelsius),
		formatFloat(r.Temperature120mCelsius),
		formatFloat(r.SoilTemperature0cmCelsius),
		formatFloat(r.SoilTemperature6cmCelsius),
		formatFloat(r.RainMM),
		formatFloat(r.ShowersMM),
		formatFloat(r.SnowfallMM),
		formatFloat(r.DaylightHours),
		formatString(r.SunriseISO),
		formatString(r.SunsetISO),
		formatFloat(r.AvgTemperature2m24h),
		formatFloat(r.AvgRelativeHumidity2m24h),
		formatFloat(r.AvgDewPoint2m24h),
		formatFloat(r.AvgApparentTemperature24h),
		formatFloat(r.AvgTemperature80m24h),
		formatFloat(r.AvgTemperature120m24h),
		formatFloat(r.AvgWindSpeed10m24h),
		formatFloat(r.AvgWindSpeed80m24h),
		formatFloat(r.AvgVisibility24h),
		formatFloat(r.TotalRain24h),
		formatFloat(r.TotalShowers24h),
		formatFloat(r.TotalSnowfall24h),
		formatFloat(r.AvgTemperature2mDaylight),
		formatFloat(r.AvgRelativeHumidity2mDaylight),
		formatFloat(r.AvgDewPoint2mDaylight),
		formatFloat(r.AvgApparentTemperatureDaylight),
		formatFloat(r.AvgTemperature80mDaylight),
		formatFloat(r.AvgTemperature120mDaylight),
		formatFloat(r.AvgWindSpeed10mDaylight),
		formatFloat(r.AvgWindSpeed80mDaylight),
		formatFloat(r.AvgVisibilityDaylight),
		formatFloat(r.TotalRainDaylight),
		formatFloat(r.TotalShowersDaylight),
		formatFloat(r.TotalSnowfallDaylight),
	}
}

// formatFloat prints the shortest round-trip form the way Python's repr does:
// exponent notation below 1e-4 and from 1e16 up, otherwise positional with a
// ".0" kept on integral values.
func formatFloat(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	switch {
	case math.IsInf(*v, 1):
		return "inf"
	case math.IsInf(*v, -1):
		return "-inf"
	case *v == 0:
		if math.Signbit(*v) {
			return "-0.0"
		}
		return "0.0"
	}

	e := strconv.FormatFloat(*v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return e
	}

	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if *v == math.Trunc(*v) {
		s += ".0"
	}
	return s
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
