package weather

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// nullPolicy decides whether a source column is converted at all.
type nullPolicy int

const (
	// convertIfAny converts when at least one value is present; nulls stay null.
	convertIfAny nullPolicy = iota
	// convertIfComplete converts only when the column has no nulls; otherwise
	// the whole converted column is null.
	convertIfComplete
)

type conversion struct {
	Source  string
	Target  string
	Convert func(float64) float64
	Policy  nullPolicy
}

// Precipitation columns are converted under the lenient policy while the
// temperature, wind and visibility columns use the all-or-nothing one.
var conversions = []conversion{
	{FieldRain, "rain_mm", InchesToMillimeters, convertIfAny},
	{FieldShowers, "showers_mm", InchesToMillimeters, convertIfAny},
	{FieldSnowfall, "snowfall_mm", InchesToMillimeters, convertIfAny},

	{FieldTemperature2m, "temperature_2m_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldDewPoint2m, "dew_point_2m_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldApparentTemperature, "apparent_temperature_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldTemperature80m, "temperature_80m_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldTemperature120m, "temperature_120m_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldSoilTemperature0cm, "soil_temperature_0cm_celsius", FahrenheitToCelsius, convertIfComplete},
	{FieldSoilTemperature6cm, "soil_temperature_6cm_celsius", FahrenheitToCelsius, convertIfComplete},

	{FieldWindSpeed10m, "wind_speed_10m_m_per_s", KnotsToMetersPerSecond, convertIfComplete},
	{FieldWindSpeed80m, "wind_speed_80m_m_per_s", KnotsToMetersPerSecond, convertIfComplete},

	{FieldVisibility, "visibility_m", FeetToMeters, convertIfComplete},
}

// Transform turns the raw observations into the final hourly table with both
// daily aggregates broadcast onto every hour of their date.
func Transform(raw RawObservationSet) ([]FinalRow, error) {
	table, err := BuildHourlyTable(raw.Hourly)
	if err != nil {
		return nil, err
	}
	daily, err := BuildDailyRecords(raw.Daily)
	if err != nil {
		return nil, err
	}

	ConvertUnits(&table)

	byDate := indexDaily(daily)

	all := make([]int, table.Len())
	var daylight []int
	for i := range all {
		all[i] = i
		if rec, ok := byDate[table.Date[i]]; ok && rec.InDaylight(table.Datetime[i]) {
			daylight = append(daylight, i)
		}
	}

	full := AggregateByDate(table, Window24h, all)
	day := AggregateByDate(table, WindowDaylight, daylight)

	rows := make([]FinalRow, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		date := table.Date[i]
		var rec *DailyRecord
		if r, ok := byDate[date]; ok {
			rec = &r
		}
		rows = append(rows, buildRow(table, i, rec, full[date], day[date]))
	}
	return rows, nil
}

// BuildHourlyTable parses timestamps and derives the calendar date of each hour.
func BuildHourlyTable(s HourlySeries) (HourlyTable, error) {
	var errs *multierror.Error

	table := HourlyTable{
		Datetime: make([]time.Time, len(s.Time)),
		Date:     make([]string, len(s.Time)),
		Columns:  make(map[string]Column, len(s.Columns)),
	}
	for i, ts := range s.Time {
		t, err := parseLocalTime(ts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("hourly.time[%d]: %w", i, err))
			continue
		}
		table.Datetime[i] = t
		table.Date[i] = t.Format(dateLayout)
	}
	for name, col := range s.Columns {
		if len(col) != len(s.Time) {
			errs = multierror.Append(errs, fmt.Errorf("hourly.%s: %d values for %d timestamps", name, len(col), len(s.Time)))
			continue
		}
		table.Columns[name] = col
	}

	if err := errs.ErrorOrNil(); err != nil {
		return HourlyTable{}, &DataShapeError{Err: err}
	}
	return table, nil
}

// BuildDailyRecords parses the daily block. Empty sunrise/sunset values leave
// the record without a daylight window.
func BuildDailyRecords(s DailySeries) ([]DailyRecord, error) {
	n := len(s.Time)
	if len(s.Sunrise) != n || len(s.Sunset) != n {
		return nil, &DataShapeError{Err: fmt.Errorf("daily: sunrise/sunset lengths %d/%d for %d dates", len(s.Sunrise), len(s.Sunset), n)}
	}

	var errs *multierror.Error

	records := make([]DailyRecord, 0, n)
	for i, d := range s.Time {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("daily.time[%d]: %w", i, err))
			continue
		}
		rec := DailyRecord{
			Date:       day.Format(dateLayout),
			SunriseISO: s.Sunrise[i],
			SunsetISO:  s.Sunset[i],
		}
		if rec.SunriseISO != "" && rec.SunsetISO != "" {
			if rec.Sunrise, err = parseLocalTime(rec.SunriseISO); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("daily.sunrise[%d]: %w", i, err))
				continue
			}
			if rec.Sunset, err = parseLocalTime(rec.SunsetISO); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("daily.sunset[%d]: %w", i, err))
				continue
			}
			hours := rec.Sunset.Sub(rec.Sunrise).Hours()
			rec.DaylightHours = &hours
		}
		records = append(records, rec)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, &DataShapeError{Err: err}
	}
	return records, nil
}

// ConvertUnits adds the metric counterpart of every imperial column.
func ConvertUnits(t *HourlyTable) {
	n := t.Len()
	for _, c := range conversions {
		src, ok := t.Columns[c.Source]
		out := make(Column, n)
		if ok && convertible(src, c.Policy) {
			for i, v := range src {
				if v == nil {
					continue
				}
				converted := c.Convert(*v)
				out[i] = &converted
			}
		}
		t.Columns[c.Target] = out
	}
}

func convertible(col Column, policy nullPolicy) bool {
	switch policy {
	case convertIfAny:
		return col.NonNullCount() > 0
	case convertIfComplete:
		return col.NonNullCount() == len(col)
	default:
		return false
	}
}

// indexDaily keys daily records by date; the first record of a date wins so
// the join never multiplies hourly rows.
func indexDaily(records []DailyRecord) map[string]DailyRecord {
	out := make(map[string]DailyRecord, len(records))
	for _, r := range records {
		if _, exists := out[r.Date]; !exists {
			out[r.Date] = r
		}
	}
	return out
}

func buildRow(t HourlyTable, i int, rec *DailyRecord, full, day *DailyAggregate) FinalRow {
	at := func(name string) *float64 {
		col, ok := t.Columns[name]
		if !ok {
			return nil
		}
		return col[i]
	}

	row := FinalRow{
		Date:     t.Date[i],
		Datetime: t.Datetime[i].Format(datetimeLayout),

		WindSpeed10mMPerS:          at("wind_speed_10m_m_per_s"),
		WindSpeed80mMPerS:          at("wind_speed_80m_m_per_s"),
		Temperature2mCelsius:       at("temperature_2m_celsius"),
		ApparentTemperatureCelsius: at("apparent_temperature_celsius"),
		Temperature80mCelsius:      at("temperature_80m_celsius"),
		Temperature120mCelsius:     at("temperature_120m_celsius"),
		SoilTemperature0cmCelsius:  at("soil_temperature_0cm_celsius"),
		SoilTemperature6cmCelsius:  at("soil_temperature_6cm_celsius"),
		RainMM:                     at("rain_mm"),
		ShowersMM:                  at("showers_mm"),
		SnowfallMM:                 at("snowfall_mm"),

		AvgTemperature2m24h:       full.Value(AggTemperature2m),
		AvgRelativeHumidity2m24h:  full.Value(AggRelativeHumidity2m),
		AvgDewPoint2m24h:          full.Value(AggDewPoint2m),
		AvgApparentTemperature24h: full.Value(AggApparentTemperature),
		AvgTemperature80m24h:      full.Value(AggTemperature80m),
		AvgTemperature120m24h:     full.Value(AggTemperature120m),
		AvgWindSpeed10m24h:        full.Value(AggWindSpeed10m),
		AvgWindSpeed80m24h:        full.Value(AggWindSpeed80m),
		AvgVisibility24h:          full.Value(AggVisibility),
		TotalRain24h:              full.Value(AggRain),
		TotalShowers24h:           full.Value(AggShowers),
		TotalSnowfall24h:          full.Value(AggSnowfall),

		AvgTemperature2mDaylight:       day.Value(AggTemperature2m),
		AvgRelativeHumidity2mDaylight:  day.Value(AggRelativeHumidity2m),
		AvgDewPoint2mDaylight:          day.Value(AggDewPoint2m),
		AvgApparentTemperatureDaylight: day.Value(AggApparentTemperature),
		AvgTemperature80mDaylight:      day.Value(AggTemperature80m),
		AvgTemperature120mDaylight:     day.Value(AggTemperature120m),
		AvgWindSpeed10mDaylight:        day.Value(AggWindSpeed10m),
		AvgWindSpeed80mDaylight:        day.Value(AggWindSpeed80m),
		AvgVisibilityDaylight:          day.Value(AggVisibility),
		TotalRainDaylight:              day.Value(AggRain),
		TotalShowersDaylight:           day.Value(AggShowers),
		TotalSnowfallDaylight:          day.Value(AggSnowfall),
	}

	if rec != nil {
		row.DaylightHours = rec.DaylightHours
		if rec.SunriseISO != "" {
			sunrise := rec.SunriseISO
			row.SunriseISO = &sunrise
		}
		if rec.SunsetISO != "" {
			sunset := rec.SunsetISO
			row.SunsetISO = &sunset
		}
	}
	return row
}

// parseLocalTime parses API timestamps as wall-clock times. The API already
// localises them (timezone=auto), so any zone offset is dropped.
func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}
