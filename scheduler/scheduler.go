package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/utils"
)

type JobFunc func(ctx context.Context) error

// Job is a periodic task. Runs never overlap: a tick that arrives while the
// previous run is still in flight is skipped, not queued.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Func     JobFunc

	running atomic.Bool
}

// Scheduler drives registered jobs until the context is canceled. A failing
// run is logged and the job keeps its schedule.
type Scheduler struct {
	logger logging.Logger
	jobs   []*Job
}

func NewScheduler(logger logging.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

func (s *Scheduler) Add(job *Job) {
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		go s.runLoop(ctx, job)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, job *Job) {
	for {
		go s.runJob(ctx, job)
		if utils.ContextSleep(ctx, job.Interval) == nil {
			return
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	logger := s.logger.WithField("job", job.Name)
	if !job.running.CompareAndSwap(false, true) {
		SkippedRuns.WithLabelValues(job.Name).Inc()
		logger.Warn("previous run is still in progress, skipping")
		return
	}
	defer job.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	timer := prometheus.NewTimer(RunDurations.WithLabelValues(job.Name))
	err := job.Func(ctx)
	timer.ObserveDuration()
	if err != nil {
		FailedRuns.WithLabelValues(job.Name).Inc()
		logger.WithError(err).Error("job run failed")
	}
}
