package weather

import (
	"time"
)

// Document is a parsed JSON body in its generic form (nested maps and slices).
type Document map[string]any

// Column is one columnar series; a nil element is a null value.
type Column []*float64

// NonNullCount returns the number of non-null values in the column.
func (c Column) NonNullCount() int {
	n := 0
	for _, v := range c {
		if v != nil {
			n++
		}
	}
	return n
}

// Hourly source fields, as named by the forecast API.
const (
	FieldTemperature2m       = "temperature_2m"
	FieldRelativeHumidity2m  = "relative_humidity_2m"
	FieldDewPoint2m          = "dew_point_2m"
	FieldApparentTemperature = "apparent_temperature"
	FieldTemperature80m      = "temperature_80m"
	FieldTemperature120m     = "temperature_120m"
	FieldWindSpeed10m        = "wind_speed_10m"
	FieldWindSpeed80m        = "wind_speed_80m"
	FieldWindDirection10m    = "wind_direction_10m"
	FieldWindDirection80m    = "wind_direction_80m"
	FieldVisibility          = "visibility"
	FieldEvapotranspiration  = "evapotranspiration"
	FieldWeatherCode         = "weather_code"
	FieldSoilTemperature0cm  = "soil_temperature_0cm"
	FieldSoilTemperature6cm  = "soil_temperature_6cm"
	FieldRain                = "rain"
	FieldShowers             = "showers"
	FieldSnowfall            = "snowfall"
)

// HourlyFields lists every hourly field requested from the API, in request order.
var HourlyFields = []string{
	FieldTemperature2m, FieldRelativeHumidity2m, FieldDewPoint2m, FieldApparentTemperature,
	FieldTemperature80m, FieldTemperature120m, FieldWindSpeed10m, FieldWindSpeed80m,
	FieldWindDirection10m, FieldWindDirection80m, FieldVisibility, FieldEvapotranspiration,
	FieldWeatherCode, FieldSoilTemperature0cm, FieldSoilTemperature6cm,
	FieldRain, FieldShowers, FieldSnowfall,
}

// DailyFields lists the daily fields requested from the API.
var DailyFields = []string{"sunrise", "sunset", "daylight_duration"}

// RawObservationSet is the API response decoded into typed series.
type RawObservationSet struct {
	Hourly HourlySeries
	Daily  DailySeries
}

// HourlySeries holds the hourly block in columnar layout.
// Fields missing from the response are missing from Columns.
type HourlySeries struct {
	Time    []string
	Columns map[string]Column
}

// DailySeries holds the daily block in columnar layout.
type DailySeries struct {
	Time             []string
	Sunrise          []string
	Sunset           []string
	DaylightDuration Column
}

// HourlyTable is the transformed hourly data: raw columns plus converted ones.
type HourlyTable struct {
	Datetime []time.Time
	Date     []string
	Columns  map[string]Column
}

// Len returns the number of hourly rows.
func (t HourlyTable) Len() int {
	return len(t.Datetime)
}

// DailyRecord is one daily entry with parsed sunrise/sunset.
type DailyRecord struct {
	Date          string
	SunriseISO    string
	SunsetISO     string
	Sunrise       time.Time
	Sunset        time.Time
	DaylightHours *float64
}

// HasWindow reports whether both sunrise and sunset are known.
func (d DailyRecord) HasWindow() bool {
	return !d.Sunrise.IsZero() && !d.Sunset.IsZero()
}

// InDaylight reports whether t falls within [Sunrise, Sunset].
func (d DailyRecord) InDaylight(t time.Time) bool {
	return d.HasWindow() && !t.Before(d.Sunrise) && !t.After(d.Sunset)
}

// Window selects which hours of a date an aggregate covers.
type Window string

const (
	Window24h      Window = "24h"
	WindowDaylight Window = "daylight"
)

// DailyAggregate holds per-date means and totals over one window.
// Values are keyed by aggregate name (see AggregateFields); nil means no data.
type DailyAggregate struct {
	Date   string
	Window Window
	Values map[string]*float64
}

// Value returns the aggregate by name; it is safe on a nil receiver.
func (a *DailyAggregate) Value(name string) *float64 {
	if a == nil {
		return nil
	}
	return a.Values[name]
}

// FinalRow is one output row: an hourly record joined with its daily data and
// both daily aggregates. Field order matches FinalColumns.
type FinalRow struct {
	// ID is the SQLite surrogate key. Local timestamps can repeat on a DST
	// fall-back, so datetime is not unique.
	ID uint64 `json:"-" gorm:"column:id;primaryKey;autoIncrement"`

	Date     string `json:"date" gorm:"column:date;index" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Datetime string `json:"datetime" gorm:"column:datetime;index" parquet:"name=datetime, type=BYTE_ARRAY, convertedtype=UTF8"`

	WindSpeed10mMPerS          *float64 `json:"wind_speed_10m_m_per_s" gorm:"column:wind_speed_10m_m_per_s" parquet:"name=wind_speed_10m_m_per_s, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed80mMPerS          *float64 `json:"wind_speed_80m_m_per_s" gorm:"column:wind_speed_80m_m_per_s" parquet:"name=wind_speed_80m_m_per_s, type=DOUBLE, repetitiontype=OPTIONAL"`
	Temperature2mCelsius       *float64 `json:"temperature_2m_celsius" gorm:"column:temperature_2m_celsius" parquet:"name=temperature_2m_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	ApparentTemperatureCelsius *float64 `json:"apparent_temperature_celsius" gorm:"column:apparent_temperature_celsius" parquet:"name=apparent_temperature_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	Temperature80mCelsius      *float64 `json:"temperature_80m_celsius" gorm:"column:temperature_80m_celsius" parquet:"name=temperature_80m_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	Temperature120mCelsius     *float64 `json:"temperature_120m_celsius" gorm:"column:temperature_120m_celsius" parquet:"name=temperature_120m_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	SoilTemperature0cmCelsius  *float64 `json:"soil_temperature_0cm_celsius" gorm:"column:soil_temperature_0cm_celsius" parquet:"name=soil_temperature_0cm_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	SoilTemperature6cmCelsius  *float64 `json:"soil_temperature_6cm_celsius" gorm:"column:soil_temperature_6cm_celsius" parquet:"name=soil_temperature_6cm_celsius, type=DOUBLE, repetitiontype=OPTIONAL"`
	RainMM                     *float64 `json:"rain_mm" gorm:"column:rain_mm" parquet:"name=rain_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
	ShowersMM                  *float64 `json:"showers_mm" gorm:"column:showers_mm" parquet:"name=showers_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
	SnowfallMM                 *float64 `json:"snowfall_mm" gorm:"column:snowfall_mm" parquet:"name=snowfall_mm, type=DOUBLE, repetitiontype=OPTIONAL"`

	DaylightHours *float64 `json:"daylight_hours" gorm:"column:daylight_hours" parquet:"name=daylight_hours, type=DOUBLE, repetitiontype=OPTIONAL"`
	SunriseISO    *string  `json:"sunrise_iso" gorm:"column:sunrise_iso" parquet:"name=sunrise_iso, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SunsetISO     *string  `json:"sunset_iso" gorm:"column:sunset_iso" parquet:"name=sunset_iso, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	AvgTemperature2m24h       *float64 `json:"avg_temperature_2m_24h" gorm:"column:avg_temperature_2m_24h" parquet:"name=avg_temperature_2m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgRelativeHumidity2m24h  *float64 `json:"avg_relative_humidity_2m_24h" gorm:"column:avg_relative_humidity_2m_24h" parquet:"name=avg_relative_humidity_2m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgDewPoint2m24h          *float64 `json:"avg_dew_point_2m_24h" gorm:"column:avg_dew_point_2m_24h" parquet:"name=avg_dew_point_2m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgApparentTemperature24h *float64 `json:"avg_apparent_temperature_24h" gorm:"column:avg_apparent_temperature_24h" parquet:"name=avg_apparent_temperature_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgTemperature80m24h      *float64 `json:"avg_temperature_80m_24h" gorm:"column:avg_temperature_80m_24h" parquet:"name=avg_temperature_80m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgTemperature120m24h     *float64 `json:"avg_temperature_120m_24h" gorm:"column:avg_temperature_120m_24h" parquet:"name=avg_temperature_120m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgWindSpeed10m24h        *float64 `json:"avg_wind_speed_10m_24h" gorm:"column:avg_wind_speed_10m_24h" parquet:"name=avg_wind_speed_10m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgWindSpeed80m24h        *float64 `json:"avg_wind_speed_80m_24h" gorm:"column:avg_wind_speed_80m_24h" parquet:"name=avg_wind_speed_80m_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgVisibility24h          *float64 `json:"avg_visibility_24h" gorm:"column:avg_visibility_24h" parquet:"name=avg_visibility_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalRain24h              *float64 `json:"total_rain_24h" gorm:"column:total_rain_24h" parquet:"name=total_rain_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalShowers24h           *float64 `json:"total_showers_24h" gorm:"column:total_showers_24h" parquet:"name=total_showers_24h, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalSnowfall24h          *float64 `json:"total_snowfall_24h" gorm:"column:total_snowfall_24h" parquet:"name=total_snowfall_24h, type=DOUBLE, repetitiontype=OPTIONAL"`

	AvgTemperature2mDaylight       *float64 `json:"avg_temperature_2m_daylight" gorm:"column:avg_temperature_2m_daylight" parquet:"name=avg_temperature_2m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgRelativeHumidity2mDaylight  *float64 `json:"avg_relative_humidity_2m_daylight" gorm:"column:avg_relative_humidity_2m_daylight" parquet:"name=avg_relative_humidity_2m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgDewPoint2mDaylight          *float64 `json:"avg_dew_point_2m_daylight" gorm:"column:avg_dew_point_2m_daylight" parquet:"name=avg_dew_point_2m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgApparentTemperatureDaylight *float64 `json:"avg_apparent_temperature_daylight" gorm:"column:avg_apparent_temperature_daylight" parquet:"name=avg_apparent_temperature_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgTemperature80mDaylight      *float64 `json:"avg_temperature_80m_daylight" gorm:"column:avg_temperature_80m_daylight" parquet:"name=avg_temperature_80m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgTemperature120mDaylight     *float64 `json:"avg_temperature_120m_daylight" gorm:"column:avg_temperature_120m_daylight" parquet:"name=avg_temperature_120m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgWindSpeed10mDaylight        *float64 `json:"avg_wind_speed_10m_daylight" gorm:"column:avg_wind_speed_10m_daylight" parquet:"name=avg_wind_speed_10m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgWindSpeed80mDaylight        *float64 `json:"avg_wind_speed_80m_daylight" gorm:"column:avg_wind_speed_80m_daylight" parquet:"name=avg_wind_speed_80m_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	AvgVisibilityDaylight          *float64 `json:"avg_visibility_daylight" gorm:"column:avg_visibility_daylight" parquet:"name=avg_visibility_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalRainDaylight              *float64 `json:"total_rain_daylight" gorm:"column:total_rain_daylight" parquet:"name=total_rain_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalShowersDaylight           *float64 `json:"total_showers_daylight" gorm:"column:total_showers_daylight" parquet:"name=total_showers_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalSnowfallDaylight          *float64 `json:"total_snowfall_daylight" gorm:"column:total_snowfall_daylight" parquet:"name=total_snowfall_daylight, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// TableName specifies the table name for FinalRow.
func (FinalRow) TableName() string {
	return "final_table"
}

// FinalColumns is the output header, in order.
var FinalColumns = []string{
	"date", "datetime",
	"wind_speed_10m_m_per_s", "wind_speed_80m_m_per_s",
	"temperature_2m_celsius", "apparent_temperature_celsius", "temperature_80m_celsius",
	"temperature_120m_celsius", "soil_temperature_0cm_celsius", "soil_temperature_6cm_celsius",
	"rain_mm", "showers_mm", "snowfall_mm", "daylight_hours", "sunrise_iso", "sunset_iso",
	"avg_temperature_2m_24h", "avg_relative_humidity_2m_24h", "avg_dew_point_2m_24h",
	"avg_apparent_temperature_24h", "avg_temperature_80m_24h", "avg_temperature_120m_24h",
	"avg_wind_speed_10m_24h", "avg_wind_speed_80m_24h", "avg_visibility_24h",
	"total_rain_24h", "total_showers_24h", "total_snowfall_24h",
	"avg_temperature_2m_daylight", "avg_relative_humidity_2m_daylight", "avg_dew_point_2m_daylight",
	"avg_apparent_temperature_daylight", "avg_temperature_80m_daylight", "avg_temperature_120m_daylight",
	"avg_wind_speed_10m_daylight", "avg_wind_speed_80m_daylight", "avg_visibility_daylight",
	"total_rain_daylight", "total_showers_daylight", "total_snowfall_daylight",
}

// Run is one completed pipeline execution.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"` // always UTC
	FinishedAt time.Time  `json:"finishedAt"`
	SourceURL  string     `json:"sourceUrl"`
	Rows       []FinalRow `json:"-"`
}

// RunSummary is the row-less view of a Run.
type RunSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	SourceURL  string    `json:"sourceUrl"`
	RowCount   int       `json:"rowCount"`
	Dates      []string  `json:"dates"`
}

// Summary returns the row-less view of the run.
func (r Run) Summary() RunSummary {
	var dates []string
	seen := make(map[string]bool)
	for _, row := range r.Rows {
		if !seen[row.Date] {
			seen[row.Date] = true
			dates = append(dates, row.Date)
		}
	}
	return RunSummary{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		SourceURL:  r.SourceURL,
		RowCount:   len(r.Rows),
		Dates:      dates,
	}
}
