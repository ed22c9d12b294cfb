package weather

import (
	"fmt"
)

// HTTPError is returned when the forecast request fails: a non-2xx status or a
// transport failure (StatusCode is 0 then).
type HTTPError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("http error: GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("http error: GET %s: %v", e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// DataShapeError is returned when the response body cannot be laid out as
// hourly/daily tables.
type DataShapeError struct {
	Err error
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("data shape error: %v", e.Err)
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}
