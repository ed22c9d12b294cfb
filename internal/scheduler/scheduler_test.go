package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-daylight-etl/internal/weather"
)

type countingRunner struct {
	calls int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (weather.Run, error) {
	atomic.AddInt32(&r.calls, 1)
	if _, ok := ctx.Deadline(); !ok {
		return weather.Run{}, errors.New("run context has no deadline")
	}
	return weather.Run{ID: "run"}, r.err
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(time.Hour, runner)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerSurvivesFailedRun(t *testing.T) {
	runner := &countingRunner{err: errors.New("upstream down")}
	s := New(50*time.Millisecond, runner)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
