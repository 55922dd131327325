package remote

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig bounds the attempts made for one annotation request.
type RetryConfig struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetry makes three attempts, waiting 250ms and then 500ms.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		Attempts:   3,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   4 * time.Second,
		Multiplier: 2,
	}
}

// delay is the wait before retry n (1-based).
func (c RetryConfig) delay(n int) time.Duration {
	mult := c.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := time.Duration(float64(c.BaseDelay) * math.Pow(mult, float64(n-1)))
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// retry calls fn until it succeeds or the attempts run out, returning the
// last error.
func retry(ctx context.Context, cfg RetryConfig, log zerolog.Logger, fn func(ctx context.Context, attempt int) (string, error)) (string, error) {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := cfg.delay(attempt - 1)
			log.Debug().
				Int("attempt", attempt).
				Int("max_attempts", attempts).
				Dur("delay", wait).
				Msg("retrying remote generation")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		out, err := fn(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("remote generation succeeded after retry")
			}
			return out, nil
		}
		lastErr = err
		log.Debug().Err(err).Int("attempt", attempt).Msg("remote generation attempt failed")
	}
	return "", lastErr
}
