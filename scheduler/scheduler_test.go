package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/scheduler"
)

func TestSchedulerRunsJobPeriodically(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int64
	s := scheduler.NewScheduler(logging.New())
	s.Add(&scheduler.Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Func: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerKeepsScheduleAfterFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int64
	s := scheduler.NewScheduler(logging.New())
	s.Add(&scheduler.Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Func: func(ctx context.Context) error {
			if runs.Add(1) == 1 {
				return errors.New("transient failure")
			}
			return nil
		},
	})
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int64
	block := make(chan struct{})
	job := &scheduler.Job{
		Name:     "slow",
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
		Func: func(ctx context.Context) error {
			started.Add(1)
			<-block
			return nil
		},
	}
	s := scheduler.NewScheduler(logging.New())
	s.Add(job)
	s.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 1, started.Load())
	close(block)
}
