package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-daylight-etl/internal/store"
	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/runs", func(c *fiber.Ctx) error {
		run, err := service.Run(c.UserContext())
		if err != nil {
			var (
				httpErr  *weather.HTTPError
				shapeErr *weather.DataShapeError
			)
			switch {
			case errors.As(err, &httpErr):
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			case errors.As(err, &shapeErr):
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "pipeline run failed")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(run.Summary())
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		runs, err := service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline runs for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch run history")
		}

		summaries := make([]weather.RunSummary, 0, len(runs))
		for _, run := range runs {
			summaries = append(summaries, run.Summary())
		}
		return c.JSON(fiber.Map{
			"from": req.From,
			"to":   req.To,
			"runs": summaries,
		})
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		run, err := latestRun(service)
		if err != nil {
			return err
		}
		return c.JSON(run.Summary())
	})

	v1.Get("/runs/latest/rows", func(c *fiber.Ctx) error {
		q := rowsQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		run, err := latestRun(service)
		if err != nil {
			return err
		}

		rows := q.filter(run.Rows)
		return c.JSON(fiber.Map{
			"run":  run.ID,
			"date": q.Date,
			"rows": rows,
		})
	})

	v1.Get("/runs/latest/table.csv", func(c *fiber.Ctx) error {
		run, err := latestRun(service)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := store.EncodeCSV(&buf, run.Rows); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode table")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="final_table.csv"`)
		return c.Send(buf.Bytes())
	})
}

func latestRun(service *weather.Service) (weather.Run, error) {
	run, err := service.GetLatest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return weather.Run{}, fiber.NewError(fiber.StatusNotFound, "no pipeline run has completed yet")
		}
		return weather.Run{}, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest run")
	}
	return run, nil
}

// rowsQuery holds the optional date filter for the rows endpoint.
type rowsQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

func (q rowsQuery) filter(rows []weather.FinalRow) []weather.FinalRow {
	if q.Date == "" {
		return rows
	}
	out := make([]weather.FinalRow, 0, 24)
	for _, r := range rows {
		if r.Date == q.Date {
			out = append(out, r)
		}
	}
	return out
}

// historyQuery holds query parameters for the run history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
