package annotate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	annotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quip_annotations_total",
		Help: "Annotations produced by origin and cache status",
	}, []string{"origin", "cached"})
	produceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quip_produce_duration_seconds",
		Help:    "Time to produce one annotation",
		Buckets: prometheus.DefBuckets,
	})
	stepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quip_step_failures_total",
		Help: "Orchestrator steps skipped after a recovered fault",
	}, []string{"step"})
)
