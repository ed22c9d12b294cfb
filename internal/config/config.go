package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-daylight-etl/internal/common"
	"github.com/i474232898/weather-daylight-etl/internal/weather/providers"
)

// Run modes.
const (
	ModeOnce  = "once"
	ModeServe = "serve"
)

// Output formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

type AppConfig struct {
	Mode string `validate:"oneof=once serve"`

	// ForecastURL, when set, is requested verbatim instead of a URL built
	// from the location and date range below.
	ForecastURL string  `validate:"omitempty,url"`
	BaseURL     string  `validate:"required,url"`
	Latitude    float64 `validate:"gte=-90,lte=90"`
	Longitude   float64 `validate:"gte=-180,lte=180"`
	StartDate   string  `validate:"required,datetime=2006-01-02"`
	EndDate     string  `validate:"required,datetime=2006-01-02"`

	// HTTPTimeout of 0 leaves the client without a timeout.
	HTTPTimeout     time.Duration `validate:"gte=0"`
	FetchMaxRetries int           `validate:"gte=0"`

	OutputFormats []string `validate:"required,min=1,dive,oneof=csv parquet sqlite"`
	CSVPath       string   `validate:"required"`
	ParquetPath   string   `validate:"required"`
	SQLitePath    string   `validate:"required"`

	// FetchInterval controls how often the pipeline runs in serve mode.
	FetchInterval time.Duration `validate:"gt=0"`

	// In-memory run history retention.
	StoreMaxHistory int           // max number of runs kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of runs (0 = unlimited)

	Port string `validate:"required,numeric"`
}

// SourceURL returns the URL a run requests.
func (c *AppConfig) SourceURL() string {
	if c.ForecastURL != "" {
		return c.ForecastURL
	}
	q := providers.ForecastQuery{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
	return q.URL(c.BaseURL)
}

// Load reads configuration from environment. The defaults request Novosibirsk
// for the second half of June 2025.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Mode = getenvDefault("RUN_MODE", ModeOnce)
	cfg.ForecastURL = os.Getenv("FORECAST_URL")
	cfg.BaseURL = getenvDefault("OPENMETEO_BASE_URL", providers.DefaultOpenMeteoURL)
	cfg.StartDate = getenvDefault("WEATHER_START_DATE", "2025-06-16")
	cfg.EndDate = getenvDefault("WEATHER_END_DATE", "2025-06-30")

	var err error
	if cfg.Latitude, err = getenvFloat("WEATHER_LATITUDE", 55.0344); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = getenvFloat("WEATHER_LONGITUDE", 82.9434); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 0)

	cfg.OutputFormats = common.SplitList(getenvDefault("OUTPUT_FORMATS", FormatCSV))
	cfg.CSVPath = getenvDefault("CSV_PATH", "data/final_table.csv")
	cfg.ParquetPath = getenvDefault("PARQUET_PATH", "data/final_table.parquet")
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/final_table.db")

	// Scheduler interval: default 1 hour.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 24)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "168h"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the date range is ordered.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.ForecastURL == "" && c.EndDate < c.StartDate {
		return fmt.Errorf("invalid configuration: WEATHER_END_DATE %s is before WEATHER_START_DATE %s", c.EndDate, c.StartDate)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
