package weather

import (
	"github.com/i474232898/weather-daylight-etl/internal/common"
)

// Aggregate names, shared by both windows.
const (
	AggTemperature2m       = "temperature_2m"
	AggRelativeHumidity2m  = "relative_humidity_2m"
	AggDewPoint2m          = "dew_point_2m"
	AggApparentTemperature = "apparent_temperature"
	AggTemperature80m      = "temperature_80m"
	AggTemperature120m     = "temperature_120m"
	AggWindSpeed10m        = "wind_speed_10m"
	AggWindSpeed80m        = "wind_speed_80m"
	AggVisibility          = "visibility"
	AggRain                = "rain"
	AggShowers             = "showers"
	AggSnowfall            = "snowfall"
)

type aggregateKind int

const (
	aggregateMean aggregateKind = iota
	aggregateSum
)

// AggregateField maps a per-date aggregate onto the hourly column it reads.
type AggregateField struct {
	Name   string
	Source string
	Kind   aggregateKind
}

// Column returns the output column name of the aggregate for a window,
// e.g. avg_temperature_2m_24h or total_rain_daylight.
func (f AggregateField) Column(w Window) string {
	prefix := "avg_"
	if f.Kind == aggregateSum {
		prefix = "total_"
	}
	return prefix + f.Name + "_" + string(w)
}

// AggregateFields lists the per-date aggregates. Relative humidity has no unit
// conversion and is averaged as returned.
var AggregateFields = []AggregateField{
	{AggTemperature2m, "temperature_2m_celsius", aggregateMean},
	{AggRelativeHumidity2m, FieldRelativeHumidity2m, aggregateMean},
	{AggDewPoint2m, "dew_point_2m_celsius", aggregateMean},
	{AggApparentTemperature, "apparent_temperature_celsius", aggregateMean},
	{AggTemperature80m, "temperature_80m_celsius", aggregateMean},
	{AggTemperature120m, "temperature_120m_celsius", aggregateMean},
	{AggWindSpeed10m, "wind_speed_10m_m_per_s", aggregateMean},
	{AggWindSpeed80m, "wind_speed_80m_m_per_s", aggregateMean},
	{AggVisibility, "visibility_m", aggregateMean},
	{AggRain, "rain_mm", aggregateSum},
	{AggShowers, "showers_mm", aggregateSum},
	{AggSnowfall, "snowfall_mm", aggregateSum},
}

// AggregateByDate groups the selected rows of the table by calendar date and
// computes every AggregateField over each group. Null values are skipped. A
// group without any value for a field yields nil for a mean and 0 for a sum.
// Dates with no selected rows are absent from the result.
func AggregateByDate(t HourlyTable, w Window, rows []int) map[string]*DailyAggregate {
	groups := make(map[string][]int)
	for _, i := range rows {
		groups[t.Date[i]] = append(groups[t.Date[i]], i)
	}

	out := make(map[string]*DailyAggregate, len(groups))
	for date, idx := range groups {
		agg := &DailyAggregate{
			Date:   date,
			Window: w,
			Values: make(map[string]*float64, len(AggregateFields)),
		}
		for _, f := range AggregateFields {
			agg.Values[f.Name] = aggregateColumn(t.Columns[f.Source], idx, f.Kind)
		}
		out[date] = agg
	}
	return out
}

func aggregateColumn(col Column, idx []int, kind aggregateKind) *float64 {
	var (
		sum float64
		n   int
	)
	if col != nil {
		for _, i := range idx {
			if v := col[i]; v != nil {
				sum += *v
				n++
			}
		}
	}

	switch {
	case n == 0 && kind == aggregateSum:
		// an empty total is zero, an empty mean is unknown
		zero := 0.0
		return &zero
	case n == 0:
		return nil
	}

	result := sum
	if kind == aggregateMean {
		result = sum / float64(n)
	}
	result = common.Round5(result)
	return &result
}
