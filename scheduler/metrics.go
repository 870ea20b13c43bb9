package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "scheduler",
		Name:      "run_duration_seconds",
		Help:      "Duration of scheduled job runs.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"job"})
	FailedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scheduler",
		Name:      "failed_runs_total",
		Help:      "Number of failed scheduled job runs.",
	}, []string{"job"})
	SkippedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scheduler",
		Name:      "skipped_runs_total",
		Help:      "Number of job ticks skipped because the previous run was still in progress.",
	}, []string{"job"})
)
