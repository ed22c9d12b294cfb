package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service runs the fetch, transform and persist pipeline.
type Service struct {
	fetcher  Fetcher
	sinks    []Sink
	store    Store
	observer RunObserver
	url      string

	// runs never overlap
	mu sync.Mutex
}

// NewService creates a new Service. store and observer may be nil.
func NewService(fetcher Fetcher, url string, sinks []Sink, store Store, observer RunObserver) *Service {
	return &Service{
		fetcher:  fetcher,
		sinks:    sinks,
		store:    store,
		observer: observer,
		url:      url,
	}
}

// Run executes one pipeline pass. Any failure aborts the pass before the next
// stage, so a failed fetch or a malformed document never reaches the sinks.
func (s *Service) Run(ctx context.Context) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		SourceURL: s.url,
	}

	rows, err := s.execute(ctx, run.ID)
	run.FinishedAt = time.Now().UTC()

	if s.observer != nil {
		s.observer.ObserveRun(err, len(rows), run.FinishedAt.Sub(run.StartedAt))
	}
	if err != nil {
		log.Printf("ERROR: pipeline: run %s failed: %v", run.ID, err)
		return Run{}, err
	}

	run.Rows = rows
	if s.store != nil {
		s.store.SaveRun(run)
	}
	log.Printf("INFO: pipeline: run %s completed with %d rows in %s", run.ID, len(rows), run.FinishedAt.Sub(run.StartedAt))
	return run, nil
}

func (s *Service) execute(ctx context.Context, runID string) ([]FinalRow, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no weather fetcher configured")
	}

	log.Printf("INFO: pipeline: run %s fetching data from %s", runID, s.fetcher.Name())
	doc, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: pipeline: run %s transforming data", runID)
	raw, err := DecodeObservations(doc)
	if err != nil {
		return nil, err
	}
	rows, err := Transform(raw)
	if err != nil {
		return nil, err
	}
	log.Printf("DEBUG: pipeline: run %s produced %d rows from %d hourly and %d daily records",
		runID, len(rows), len(raw.Hourly.Time), len(raw.Daily.Time))

	for _, sink := range s.sinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Printf("INFO: pipeline: run %s saving %s output", runID, sink.Name())
		if err := sink.Write(ctx, rows); err != nil {
			return nil, fmt.Errorf("%s sink: %w", sink.Name(), err)
		}
	}
	return rows, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest() (Run, error) {
	if s.store == nil {
		return Run{}, fmt.Errorf("no run store configured")
	}
	return s.store.GetLatest()
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(from, to time.Time) ([]Run, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no run store configured")
	}
	return s.store.GetRange(from, to)
}
