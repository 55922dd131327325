package remote

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker defaults.
const (
	DefaultFailureThreshold = 5
	DefaultCooldown         = 60 * time.Second
)

// CircuitState is one of Closed, Open or HalfOpen.
type CircuitState interface {
	Name() string
	circuitState()
}

// Closed lets every request through.
type Closed struct {
	Failures    int
	LastFailure time.Time
}

// Open rejects requests until the cooldown has elapsed.
type Open struct {
	Failures    int
	LastFailure time.Time
}

// HalfOpen admits a single probe request.
type HalfOpen struct {
	Failures    int
	LastFailure time.Time
}

func (Closed) Name() string   { return "closed" }
func (Open) Name() string     { return "open" }
func (HalfOpen) Name() string { return "half-open" }

func (Closed) circuitState()   {}
func (Open) circuitState()     {}
func (HalfOpen) circuitState() {}

// BreakerStatus is the flattened, JSON friendly view of a CircuitState.
type BreakerStatus struct {
	State        string    `json:"state"`
	FailureCount int       `json:"failure_count"`
	LastFailure  time.Time `json:"last_failure_time,omitzero"`
}

// Breaker counts failed generation batches and trips after a run of them.
// State transitions are delegated to gobreaker; Breaker keeps the failure
// count and time across transitions for reporting.
type Breaker struct {
	cb *gobreaker.CircuitBreaker

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
}

// NewBreaker trips after threshold consecutive failures and probes again
// once cooldown has passed since the last failure.
func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	b := &Breaker{}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return int(c.ConsecutiveFailures) >= threshold
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			breakerState.Set(float64(to))
		},
	})
	return b
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(fn func() (string, error)) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", ErrCircuitOpen
	case err != nil:
		b.mu.Lock()
		b.failures++
		b.lastFailure = time.Now()
		b.mu.Unlock()
		return "", err
	}

	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
	return v.(string), nil
}

// IsOpen reports whether requests are currently rejected outright.
func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// State returns the current state.
func (b *Breaker) State() CircuitState {
	st := b.cb.State()

	b.mu.Lock()
	failures, last := b.failures, b.lastFailure
	b.mu.Unlock()

	switch st {
	case gobreaker.StateOpen:
		return Open{Failures: failures, LastFailure: last}
	case gobreaker.StateHalfOpen:
		return HalfOpen{Failures: failures, LastFailure: last}
	default:
		return Closed{Failures: failures, LastFailure: last}
	}
}

// Status flattens State for reporting.
func (b *Breaker) Status() BreakerStatus {
	switch s := b.State().(type) {
	case Open:
		return BreakerStatus{State: s.Name(), FailureCount: s.Failures, LastFailure: s.LastFailure}
	case HalfOpen:
		return BreakerStatus{State: s.Name(), FailureCount: s.Failures, LastFailure: s.LastFailure}
	case Closed:
		return BreakerStatus{State: s.Name(), FailureCount: s.Failures, LastFailure: s.LastFailure}
	}
	return BreakerStatus{}
}
