// Package metrics exposes pipeline run metrics in Prometheus format.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

// Run status label values.
const (
	StatusSuccess    = "success"
	StatusHTTPError  = "http_error"
	StatusShapeError = "shape_error"
	StatusError      = "error"
)

// Recorder records pipeline runs on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Gauge
}

// NewRecorder creates a Recorder with its collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_etl_runs_total",
			Help: "Pipeline runs by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weather_etl_run_duration_seconds",
			Help:    "Wall time of a pipeline run.",
			Buckets: prometheus.DefBuckets,
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_etl_last_run_rows",
			Help: "Rows produced by the last successful run.",
		}),
	}
	r.registry.MustRegister(r.runs, r.duration, r.rows)
	return r
}

// ObserveRun implements weather.RunObserver.
func (r *Recorder) ObserveRun(err error, rows int, duration time.Duration) {
	status := Status(err)
	r.runs.WithLabelValues(status).Inc()
	r.duration.Observe(duration.Seconds())
	if status == StatusSuccess {
		r.rows.Set(float64(rows))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Status maps a run error onto a status label.
func Status(err error) string {
	var (
		httpErr  *weather.HTTPError
		shapeErr *weather.DataShapeError
	)
	switch {
	case err == nil:
		return StatusSuccess
	case errors.As(err, &httpErr):
		return StatusHTTPError
	case errors.As(err, &shapeErr):
		return StatusShapeError
	default:
		return StatusError
	}
}
