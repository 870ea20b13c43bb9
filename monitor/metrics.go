package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LatestHeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "listener",
		Name:      "latest_head_block",
		Help:      "Latest head block seen by the listener.",
	}, []string{"contract"})
	LatestProcessedBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "listener",
		Name:      "latest_processed_block",
		Help:      "Latest block up to which events were processed and the cursor advanced.",
	}, []string{"contract"})
	ProcessedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "listener",
		Name:      "processed_events_total",
		Help:      "Number of processed contract events.",
	}, []string{"contract", "result"})
)
