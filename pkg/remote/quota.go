package remote

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRateWindow is used when no window length is configured.
const DefaultRateWindow = time.Minute

// Quota admits outbound requests within a fixed window. A limit of zero
// or less disables the quota.
type Quota interface {
	// Take consumes one unit, reporting false when the window is spent.
	Take(ctx context.Context) bool
	// Remaining is the number of units left in the current window, or -1
	// when unlimited.
	Remaining(ctx context.Context) int
	// SetLimit changes the window size and quota.
	SetLimit(limit int, window time.Duration)
}

// WindowQuota is an in-process fixed window counter.
type WindowQuota struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	remaining int
	resetAt   time.Time
	now       func() time.Time
}

// NewWindowQuota allows limit requests per window.
func NewWindowQuota(limit int, window time.Duration) *WindowQuota {
	q := &WindowQuota{now: time.Now}
	q.SetLimit(limit, window)
	return q
}

// SetLimit restarts the window only when limit or window change, so
// reapplying the same settings keeps the units already spent.
func (q *WindowQuota) SetLimit(limit int, window time.Duration) {
	if window <= 0 {
		window = DefaultRateWindow
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.resetAt.IsZero() && q.limit == limit && q.window == window {
		return
	}
	q.limit = limit
	q.window = window
	q.remaining = limit
	q.resetAt = q.now().Add(window)
}

// roll refills the window once its reset time has passed. Caller holds mu.
func (q *WindowQuota) roll() {
	now := q.now()
	if !now.Before(q.resetAt) {
		q.remaining = q.limit
		q.resetAt = now.Add(q.window)
	}
}

func (q *WindowQuota) Take(context.Context) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.limit <= 0 {
		return true
	}
	q.roll()
	if q.remaining <= 0 {
		return false
	}
	q.remaining--
	return true
}

func (q *WindowQuota) Remaining(context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.limit <= 0 {
		return -1
	}
	q.roll()
	return q.remaining
}

// RedisQuota shares one window across processes using redis_rate.
// Redis errors admit the request.
type RedisQuota struct {
	limiter *redis_rate.Limiter
	key     string
	log     zerolog.Logger

	mu    sync.RWMutex
	limit redis_rate.Limit
}

// NewRedisQuota allows limit requests per window under key.
func NewRedisQuota(rdb *redis.Client, key string, limit int, window time.Duration, log zerolog.Logger) *RedisQuota {
	q := &RedisQuota{
		limiter: redis_rate.NewLimiter(rdb),
		key:     key,
		log:     log,
	}
	q.SetLimit(limit, window)
	return q
}

func (q *RedisQuota) SetLimit(limit int, window time.Duration) {
	if window <= 0 {
		window = DefaultRateWindow
	}
	q.mu.Lock()
	q.limit = redis_rate.Limit{Rate: limit, Burst: limit, Period: window}
	q.mu.Unlock()
}

func (q *RedisQuota) current() redis_rate.Limit {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.limit
}

func (q *RedisQuota) Take(ctx context.Context) bool {
	limit := q.current()
	if limit.Rate <= 0 {
		return true
	}
	res, err := q.limiter.Allow(ctx, q.key, limit)
	if err != nil {
		q.log.Warn().Err(err).Str("key", q.key).Msg("quota check failed, allowing request")
		return true
	}
	return res.Allowed > 0
}

func (q *RedisQuota) Remaining(ctx context.Context) int {
	limit := q.current()
	if limit.Rate <= 0 {
		return -1
	}
	res, err := q.limiter.AllowN(ctx, q.key, limit, 0)
	if err != nil {
		return limit.Burst
	}
	return res.Remaining
}
