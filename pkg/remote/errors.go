package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen means recent failures tripped the breaker and the
	// cooldown has not elapsed yet.
	ErrCircuitOpen = errors.New("remote generation temporarily unavailable")
	// ErrUnavailable means no credentials or transport are configured.
	ErrUnavailable = errors.New("remote generation not available")
	// ErrRateLimited means the request quota for the current window is spent.
	ErrRateLimited = errors.New("remote generation rate limited")
	// ErrEmptyGeneration means the provider answered with nothing usable.
	ErrEmptyGeneration = errors.New("empty generation result")
)

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, body)
}
