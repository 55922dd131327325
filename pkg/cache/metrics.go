package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quip_cache_hits_total",
		Help: "Number of annotations served from the response cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quip_cache_misses_total",
		Help: "Number of cache lookups that found nothing",
	})
	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quip_cache_evictions_total",
		Help: "Number of entries evicted or purged from the response cache",
	})
)
