package weather

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

// DecodeObservations lays the generic response document out as hourly and
// daily series. Every shape problem found is reported in one DataShapeError.
func DecodeObservations(doc Document) (RawObservationSet, error) {
	var (
		raw  RawObservationSet
		errs *multierror.Error
	)

	hourly, err := section(doc, "hourly")
	if err != nil {
		errs = multierror.Append(errs, err)
	} else {
		raw.Hourly, err = decodeHourly(hourly)
		errs = multierror.Append(errs, err)
	}

	daily, err := section(doc, "daily")
	if err != nil {
		errs = multierror.Append(errs, err)
	} else {
		raw.Daily, err = decodeDaily(daily)
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return RawObservationSet{}, &DataShapeError{Err: err}
	}
	return raw, nil
}

func section(doc Document, key string) (map[string]any, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing %q object", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q is %T, expected an object", key, v)
	}
	return m, nil
}

func decodeHourly(m map[string]any) (HourlySeries, error) {
	var errs *multierror.Error

	series := HourlySeries{Columns: make(map[string]Column)}
	if err := decodeStrings(m, "time", &series.Time); err != nil {
		return HourlySeries{}, fmt.Errorf("hourly: %w", err)
	}

	for _, field := range HourlyFields {
		v, ok := m[field]
		if !ok {
			continue
		}
		var col Column
		if err := mapstructure.Decode(v, &col); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("hourly.%s: %w", field, err))
			continue
		}
		if len(col) != len(series.Time) {
			errs = multierror.Append(errs, fmt.Errorf("hourly.%s: %d values for %d timestamps", field, len(col), len(series.Time)))
			continue
		}
		series.Columns[field] = col
	}

	return series, errs.ErrorOrNil()
}

func decodeDaily(m map[string]any) (DailySeries, error) {
	var (
		series DailySeries
		errs   *multierror.Error
	)

	if err := decodeStrings(m, "time", &series.Time); err != nil {
		return DailySeries{}, fmt.Errorf("daily: %w", err)
	}
	if err := decodeStrings(m, "sunrise", &series.Sunrise); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("daily: %w", err))
	}
	if err := decodeStrings(m, "sunset", &series.Sunset); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("daily: %w", err))
	}
	if v, ok := m["daylight_duration"]; ok {
		if err := mapstructure.Decode(v, &series.DaylightDuration); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("daily.daylight_duration: %w", err))
		}
	}
	if errs.ErrorOrNil() != nil {
		return DailySeries{}, errs.ErrorOrNil()
	}

	n := len(series.Time)
	if len(series.Sunrise) != n || len(series.Sunset) != n {
		errs = multierror.Append(errs, fmt.Errorf("daily: sunrise/sunset lengths %d/%d for %d dates", len(series.Sunrise), len(series.Sunset), n))
	}
	if series.DaylightDuration != nil && len(series.DaylightDuration) != n {
		errs = multierror.Append(errs, fmt.Errorf("daily.daylight_duration: %d values for %d dates", len(series.DaylightDuration), n))
	}
	return series, errs.ErrorOrNil()
}

func decodeStrings(m map[string]any, key string, out *[]string) error {
	v, ok := m[key]
	if !ok || v == nil {
		return fmt.Errorf("missing %q array", key)
	}
	if err := mapstructure.Decode(v, out); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
