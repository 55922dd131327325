package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the newest records in a bounded in-process ring.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []*Record
	byID      map[string]*Record
	capacity  int
	retention time.Duration
	now       func() time.Time
}

// NewMemoryStore holds up to capacity records no older than retention.
// Zero retention keeps records until they are pushed out.
func NewMemoryStore(capacity int, retention time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryStore{
		byID:      make(map[string]*Record),
		capacity:  capacity,
		retention: retention,
		now:       time.Now,
	}
}

func (s *MemoryStore) SaveRecord(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec, s.now())
	cpy := *rec

	s.records = append(s.records, &cpy)
	s.byID[cpy.ID] = &cpy
	if over := len(s.records) - s.capacity; over > 0 {
		for _, old := range s.records[:over] {
			delete(s.byID, old.ID)
		}
		s.records = append(s.records[:0:0], s.records[over:]...)
	}
	s.expire()
	return nil
}

// expire drops records past retention. Caller holds mu.
func (s *MemoryStore) expire() {
	if s.retention <= 0 {
		return
	}
	cutoff := s.now().Add(-s.retention)
	i := 0
	for i < len(s.records) && s.records[i].Timestamp.Before(cutoff) {
		delete(s.byID, s.records[i].ID)
		i++
	}
	if i > 0 {
		s.records = append(s.records[:0:0], s.records[i:]...)
	}
}

func (s *MemoryStore) GetRecord(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := *rec
	return &cpy, nil
}

func (s *MemoryStore) ListRecords(_ context.Context, filters Filters) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filters.limit()
	skipped := 0
	out := make([]*Record, 0, min(limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[i]
		if !filters.match(rec) {
			continue
		}
		if skipped < filters.Offset {
			skipped++
			continue
		}
		cpy := *rec
		out = append(out, &cpy)
	}
	return out, nil
}

func (s *MemoryStore) GetStats(ctx context.Context, from, to time.Time) (*Stats, error) {
	recs, err := s.ListRecords(ctx, Filters{From: from, To: to, Limit: s.capacity})
	if err != nil {
		return nil, err
	}
	return aggregate(recs), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
