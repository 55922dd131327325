package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	timelineKey     = "quip:journal:timeline"
	originIndexKey  = "quip:journal:origin:%s"
	recordKeyFormat = "quip:journal:record:%s"
)

// RedisStore implements Store using Redis sorted sets as time indexes.
type RedisStore struct {
	rdb *Client
	ttl time.Duration
}

// NewRedisStore creates a new Redis-backed journal
func NewRedisStore(rdb *Client, retention time.Duration) *RedisStore {
	if retention == 0 {
		retention = 24 * time.Hour
	}
	return &RedisStore{
		rdb: rdb,
		ttl: retention,
	}
}

// SaveRecord stores rec and indexes it by time and origin.
func (s *RedisStore) SaveRecord(ctx context.Context, rec *Record) error {
	prepare(rec, time.Now())

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(recordKeyFormat, rec.ID), data, s.ttl); err != nil {
		return err
	}

	score := float64(rec.Timestamp.UnixNano())
	cutoff := fmt.Sprintf("%d", time.Now().Add(-s.ttl).UnixNano())

	pipe := s.rdb.Redis().TxPipeline()
	for _, key := range []string{timelineKey, fmt.Sprintf(originIndexKey, rec.Origin)} {
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: rec.ID})
		pipe.ZRemRangeByScore(ctx, key, "-inf", cutoff)
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID, err)
	}
	return nil
}

// GetRecord retrieves a single record by ID
func (s *RedisStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	data, err := s.rdb.Get(ctx, fmt.Sprintf(recordKeyFormat, id))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords queries records with filters
func (s *RedisStore) ListRecords(ctx context.Context, filters Filters) ([]*Record, error) {
	indexKey := timelineKey
	if filters.Origin != "" {
		indexKey = fmt.Sprintf(originIndexKey, filters.Origin)
	}

	minScore := "-inf"
	if !filters.From.IsZero() {
		minScore = fmt.Sprintf("%d", filters.From.UnixNano())
	}
	maxScore := "+inf"
	if !filters.To.IsZero() {
		maxScore = fmt.Sprintf("%d", filters.To.UnixNano())
	}

	ids, err := s.rdb.Redis().ZRevRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min:    minScore,
		Max:    maxScore,
		Offset: int64(filters.Offset),
		Count:  int64(filters.limit()),
	}).Result()
	if err != nil {
		return nil, err
	}

	recs := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRecord(ctx, id)
		if err != nil {
			// Expired between index read and fetch.
			continue
		}
		if filters.match(rec) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// GetStats aggregates records in [from, to].
func (s *RedisStore) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	recs, err := s.ListRecords(ctx, Filters{From: from, To: to, Limit: 10000})
	if err != nil {
		return nil, err
	}
	return aggregate(recs), nil
}

// Ping checks Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Redis().Ping(ctx).Err()
}
