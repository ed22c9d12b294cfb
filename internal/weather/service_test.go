package weather_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-daylight-etl/internal/store"
	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

const forecastBody = `{
	"hourly": {
		"time": ["2025-06-16T05:00", "2025-06-16T12:00", "2025-06-17T12:00"],
		"temperature_2m": [50, 68, 59],
		"relative_humidity_2m": [70, 60, 65],
		"rain": [0, 0.1, null]
	},
	"daily": {
		"time": ["2025-06-16", "2025-06-17"],
		"sunrise": ["2025-06-16T04:52", "2025-06-17T04:52"],
		"sunset": ["2025-06-16T22:11", "2025-06-17T22:12"]
	}
}`

type stubFetcher struct {
	body  string
	err   error
	calls int
	url   string
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(_ context.Context, url string) (weather.Document, error) {
	f.calls++
	f.url = url
	if f.err != nil {
		return nil, f.err
	}
	var doc weather.Document
	if err := json.Unmarshal([]byte(f.body), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type recordingSink struct {
	writes [][]weather.FinalRow
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(_ context.Context, rows []weather.FinalRow) error {
	s.writes = append(s.writes, rows)
	return s.err
}

type observation struct {
	err  error
	rows int
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveRun(err error, rows int, _ time.Duration) {
	o.seen = append(o.seen, observation{err: err, rows: rows})
}

func TestServiceRunWritesOutputs(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out", "final_table.csv")
	fetcher := &stubFetcher{body: forecastBody}
	sink := &recordingSink{}
	observer := &recordingObserver{}
	runs := store.NewMemoryStore(10, time.Hour)

	svc := weather.NewService(fetcher, "https://example.test/forecast",
		[]weather.Sink{store.NewCSVSink(csvPath), sink}, runs, observer)

	run, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "https://example.test/forecast", fetcher.url)
	assert.NotEmpty(t, run.ID)
	assert.Len(t, run.Rows, 3)
	require.Len(t, sink.writes, 1)
	assert.Len(t, sink.writes[0], 3)

	require.Len(t, observer.seen, 1)
	assert.NoError(t, observer.seen[0].err)
	assert.Equal(t, 3, observer.seen[0].rows)

	latest, err := svc.GetLatest()
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, []string{"2025-06-16", "2025-06-17"}, latest.Summary().Dates)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "date;datetime;"))
}

func TestServiceRunFetchFailureSkipsOutputs(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "final_table.csv")
	fetchErr := &weather.HTTPError{URL: "https://example.test", StatusCode: 500, Err: errors.New("server error")}
	sink := &recordingSink{}
	observer := &recordingObserver{}
	runs := store.NewMemoryStore(10, time.Hour)

	svc := weather.NewService(&stubFetcher{err: fetchErr}, "https://example.test",
		[]weather.Sink{store.NewCSVSink(csvPath), sink}, runs, observer)

	_, err := svc.Run(context.Background())
	var httpErr *weather.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 500, httpErr.StatusCode)

	assert.Empty(t, sink.writes)
	assert.NoFileExists(t, csvPath)

	require.Len(t, observer.seen, 1)
	assert.Error(t, observer.seen[0].err)

	_, err = svc.GetLatest()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestServiceRunMalformedDocument(t *testing.T) {
	sink := &recordingSink{}
	svc := weather.NewService(&stubFetcher{body: `{"hourly": {"time": []}}`}, "u",
		[]weather.Sink{sink}, nil, nil)

	_, err := svc.Run(context.Background())
	var shapeErr *weather.DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Empty(t, sink.writes)
}

func TestServiceRunSinkFailure(t *testing.T) {
	failing := &recordingSink{err: errors.New("disk full")}
	after := &recordingSink{}
	runs := store.NewMemoryStore(10, time.Hour)

	svc := weather.NewService(&stubFetcher{body: forecastBody}, "u",
		[]weather.Sink{failing, after}, runs, nil)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording sink: disk full")
	assert.Empty(t, after.writes)

	_, err = runs.GetLatest()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestServiceWithoutStore(t *testing.T) {
	svc := weather.NewService(&stubFetcher{body: forecastBody}, "u", nil, nil, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	_, err = svc.GetLatest()
	assert.Error(t, err)
	_, err = svc.GetRange(time.Time{}, time.Now())
	assert.Error(t, err)
}
