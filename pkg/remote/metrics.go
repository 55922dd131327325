package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quip_remote_requests_total",
		Help: "Remote annotation requests by outcome",
	}, []string{"outcome"})
	generationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quip_remote_latency_seconds",
		Help:    "Time spent on a remote annotation request, retries included",
		Buckets: prometheus.DefBuckets,
	})
	promptTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quip_remote_prompt_tokens",
		Help:    "Token count per remote prompt",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800},
	})
	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quip_remote_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	})
)
