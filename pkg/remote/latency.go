package remote

import (
	"sync"
	"time"
)

// DefaultLatencySamples is the window behind Status.AvgLatency.
const DefaultLatencySamples = 50

// LatencyTracker keeps a rolling average over the last successful
// generations.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxSize int
}

func NewLatencyTracker(maxSamples int) *LatencyTracker {
	if maxSamples <= 0 {
		maxSamples = DefaultLatencySamples
	}
	return &LatencyTracker{
		samples: make([]time.Duration, 0, maxSamples),
		maxSize: maxSamples,
	}
}

// Add records a sample, evicting the oldest once full.
func (lt *LatencyTracker) Add(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if len(lt.samples) >= lt.maxSize {
		lt.samples = lt.samples[1:]
	}
	lt.samples = append(lt.samples, d)
}

// Average is zero until the first sample.
func (lt *LatencyTracker) Average() time.Duration {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if len(lt.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range lt.samples {
		total += d
	}
	return total / time.Duration(len(lt.samples))
}
