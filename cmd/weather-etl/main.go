package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-daylight-etl/internal/api/http"
	"github.com/i474232898/weather-daylight-etl/internal/config"
	"github.com/i474232898/weather-daylight-etl/internal/metrics"
	"github.com/i474232898/weather-daylight-etl/internal/scheduler"
	"github.com/i474232898/weather-daylight-etl/internal/store"
	"github.com/i474232898/weather-daylight-etl/internal/weather"
	"github.com/i474232898/weather-daylight-etl/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

// run returns instead of exiting so deferred closers always run.
func run() error {
	// Load configuration (.env is optional).
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// HTTP client for the forecast request; a zero timeout means none.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	fetcher := providers.NewOpenMeteoProvider(httpClient, cfg.FetchMaxRetries)

	sinks, closers, err := buildSinks(cfg)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("ERROR: closing output: %v", err)
			}
		}
	}()
	if err != nil {
		return fmt.Errorf("failed to set up outputs: %w", err)
	}

	recorder := metrics.NewRecorder()
	runStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(fetcher, cfg.SourceURL(), sinks, runStore, recorder)

	if cfg.Mode == config.ModeOnce {
		log.Println("INFO: loading data from Open-Meteo")
		if _, err := service.Run(context.Background()); err != nil {
			return fmt.Errorf("pipeline failed: %w", err)
		}
		log.Printf("INFO: data saved to %v", cfg.OutputFormats)
		return nil
	}

	return serve(cfg, service, recorder)
}

func buildSinks(cfg *config.AppConfig) ([]weather.Sink, []io.Closer, error) {
	var (
		sinks   []weather.Sink
		closers []io.Closer
	)
	for _, format := range cfg.OutputFormats {
		switch format {
		case config.FormatCSV:
			sinks = append(sinks, store.NewCSVSink(cfg.CSVPath))
		case config.FormatParquet:
			sinks = append(sinks, store.NewParquetSink(cfg.ParquetPath))
		case config.FormatSQLite:
			s, err := store.NewSQLiteSink(cfg.SQLitePath)
			if err != nil {
				return nil, closers, err
			}
			sinks = append(sinks, s)
			closers = append(closers, s)
		}
	}
	return sinks, closers, nil
}

func serve(cfg *config.AppConfig, service *weather.Service, recorder *metrics.Recorder) error {
	// Scheduler that periodically runs the pipeline.
	sched := scheduler.New(cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-etl",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-etl",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
