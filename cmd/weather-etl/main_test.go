package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/i474232898/weather-daylight-etl/internal/store"
)

const forecastBody = `{
	"hourly": {"time": ["2025-06-16T12:00", "2025-06-16T13:00"], "temperature_2m": [68, 70]},
	"daily": {"time": ["2025-06-16"], "sunrise": ["2025-06-16T04:52"], "sunset": ["2025-06-16T22:11"]}
}`

func setOnceEnv(t *testing.T, forecastURL, dbPath string) {
	t.Helper()
	t.Setenv("RUN_MODE", "once")
	t.Setenv("FORECAST_URL", forecastURL)
	t.Setenv("OUTPUT_FORMATS", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("FETCH_MAX_RETRIES", "0")
}

// reopenCount counts the rows run left in the database.
func reopenCount(t *testing.T, dbPath string) int64 {
	t.Helper()
	sink, err := store.NewSQLiteSink(dbPath)
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer sink.Close()
	n, err := sink.Count(context.Background())
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// TestRunOnceWritesOutputs verifies a successful once-mode run.
func TestRunOnceWritesOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "final_table.db")
	setOnceEnv(t, srv.URL, dbPath)

	if err := run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := reopenCount(t, dbPath); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

// TestRunOnceReturnsFetchError verifies that a failed run is returned to the
// caller, after the outputs are closed, rather than exiting the process.
func TestRunOnceReturnsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dbPath := filepath.Join(t.TempDir(), "final_table.db")
	setOnceEnv(t, srv.URL, dbPath)

	if err := run(); err == nil {
		t.Fatalf("expected an error for a failing forecast server")
	}
	if n := reopenCount(t, dbPath); n != 0 {
		t.Fatalf("expected no rows after a failed run, got %d", n)
	}
}
