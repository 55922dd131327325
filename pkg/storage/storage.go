// Package storage keeps a journal of produced annotations in memory or in
// Redis.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown record IDs.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for persisting annotation records
type Store interface {
	SaveRecord(ctx context.Context, rec *Record) error
	GetRecord(ctx context.Context, id string) (*Record, error)
	// ListRecords returns the newest records first.
	ListRecords(ctx context.Context, filters Filters) ([]*Record, error)

	GetStats(ctx context.Context, from, to time.Time) (*Stats, error)

	// Health check
	Ping(ctx context.Context) error
}

// Filters for querying records
type Filters struct {
	Origin string
	Level  string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// DefaultListLimit applies when Filters.Limit is zero.
const DefaultListLimit = 100

func (f Filters) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// match applies the filters that are not handled by an index.
func (f Filters) match(rec *Record) bool {
	if f.Origin != "" && rec.Origin != f.Origin {
		return false
	}
	if f.Level != "" && rec.Level != f.Level {
		return false
	}
	if !f.From.IsZero() && rec.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && rec.Timestamp.After(f.To) {
		return false
	}
	return true
}

// Stats aggregated annotation statistics
type Stats struct {
	Total       int64            `json:"total"`
	Cached      int64            `json:"cached"`
	ByOrigin    map[string]int64 `json:"by_origin"`
	ByLevel     map[string]int64 `json:"by_level"`
	RemoteFails int64            `json:"remote_failures"`
	AvgDuration time.Duration    `json:"avg_duration"`
}

func aggregate(recs []*Record) *Stats {
	stats := &Stats{
		ByOrigin: make(map[string]int64),
		ByLevel:  make(map[string]int64),
	}

	var total time.Duration
	for _, rec := range recs {
		stats.Total++
		if rec.Cached {
			stats.Cached++
		}
		if rec.RemoteErr != "" {
			stats.RemoteFails++
		}
		stats.ByOrigin[rec.Origin]++
		stats.ByLevel[rec.Level]++
		total += rec.Duration
	}
	if stats.Total > 0 {
		stats.AvgDuration = total / time.Duration(stats.Total)
	}
	return stats
}

// prepare assigns an ID and timestamp when missing.
func prepare(rec *Record, now time.Time) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
}
