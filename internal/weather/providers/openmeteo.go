package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

// DefaultOpenMeteoURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// ForecastQuery describes the hourly/daily forecast request. Units are fixed to
// the imperial set the transform converts from.
type ForecastQuery struct {
	Latitude  float64
	Longitude float64
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// URL returns the fully parameterised request URL against baseURL.
func (q ForecastQuery) URL(baseURL string) string {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	values.Set("daily", strings.Join(weather.DailyFields, ","))
	values.Set("hourly", strings.Join(weather.HourlyFields, ","))
	values.Set("timezone", "auto")
	values.Set("timeformat", "iso8601")
	values.Set("wind_speed_unit", "kn")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("precipitation_unit", "inch")
	values.Set("start_date", q.StartDate)
	values.Set("end_date", q.EndDate)

	return fmt.Sprintf("%s?%s", baseURL, values.Encode())
}

// OpenMeteoProvider fetches forecast documents from Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider. Open-Meteo does not require an API key.
func NewOpenMeteoProvider(client *http.Client, maxRetries int) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name: "openmeteo",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Fetch issues the GET and returns the JSON body as a generic document.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, rawURL string) (weather.Document, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, rawURL, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc weather.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &weather.DataShapeError{Err: fmt.Errorf("decode response body: %w", err)}
	}
	return doc, nil
}
