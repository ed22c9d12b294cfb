package weather

import (
	"context"
	"time"
)

// Fetcher retrieves the raw forecast document from the weather API.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (Document, error)
}

// Sink persists the final table of a run.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []FinalRow) error
}

// Store is the contract the in-memory run store must satisfy.
type Store interface {
	SaveRun(run Run)
	GetLatest() (Run, error)
	GetRange(from, to time.Time) ([]Run, error)
}

// RunObserver is notified about every finished run, successful or not.
type RunObserver interface {
	ObserveRun(err error, rows int, duration time.Duration)
}
