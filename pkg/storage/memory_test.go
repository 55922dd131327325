package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore(10, 0)
	ctx := context.Background()

	rec := &Record{Text: "ship it", Origin: "local", Level: "mild"}
	if err := s.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("SaveRecord() error = %v", err)
	}
	if rec.ID == "" || rec.Timestamp.IsZero() {
		t.Fatalf("SaveRecord() did not assign ID/timestamp: %+v", rec)
	}

	got, err := s.GetRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if got.Text != "ship it" {
		t.Errorf("GetRecord().Text = %q", got.Text)
	}

	if _, err := s.GetRecord(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRecord(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCapacity(t *testing.T) {
	s := NewMemoryStore(3, 0)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		rec := &Record{Text: string(rune('a' + i))}
		s.SaveRecord(ctx, rec)
		ids = append(ids, rec.ID)
	}

	recs, _ := s.ListRecords(ctx, Filters{})
	if len(recs) != 3 {
		t.Fatalf("ListRecords() len = %d, want 3", len(recs))
	}
	if recs[0].Text != "e" || recs[2].Text != "c" {
		t.Errorf("ListRecords() order = %q..%q, want newest first", recs[0].Text, recs[2].Text)
	}
	if _, err := s.GetRecord(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Error("oldest record survived eviction")
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.SaveRecord(ctx, &Record{Text: "old"})
	now = now.Add(2 * time.Hour)
	s.SaveRecord(ctx, &Record{Text: "new"})

	recs, _ := s.ListRecords(ctx, Filters{})
	if len(recs) != 1 || recs[0].Text != "new" {
		t.Errorf("ListRecords() = %v, want only the fresh record", recs)
	}
}

func TestMemoryStoreFilters(t *testing.T) {
	s := NewMemoryStore(10, 0)
	ctx := context.Background()
	for _, r := range []*Record{
		{Origin: "remote", Level: "savage"},
		{Origin: "local", Level: "mild"},
		{Origin: "local", Level: "savage", Cached: true},
		{Origin: "local", Level: "mild", RemoteErr: "timeout"},
	} {
		s.SaveRecord(ctx, r)
	}

	tests := []struct {
		name    string
		filters Filters
		want    int
	}{
		{"all", Filters{}, 4},
		{"origin", Filters{Origin: "local"}, 3},
		{"level", Filters{Level: "savage"}, 2},
		{"limit", Filters{Limit: 1}, 1},
		{"offset", Filters{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.ListRecords(ctx, tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != tt.want {
				t.Errorf("len = %d, want %d", len(recs), tt.want)
			}
		})
	}

	stats, err := s.GetStats(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.Cached != 1 || stats.RemoteFails != 1 {
		t.Errorf("GetStats() = %+v", stats)
	}
	if stats.ByOrigin["local"] != 3 || stats.ByLevel["savage"] != 2 {
		t.Errorf("GetStats() breakdown = %+v", stats)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore(10, 0)
	ctx := context.Background()
	rec := &Record{Text: "original"}
	s.SaveRecord(ctx, rec)
	rec.Text = "mutated"

	got, _ := s.GetRecord(ctx, rec.ID)
	if got.Text != "original" {
		t.Errorf("store shares caller memory: %q", got.Text)
	}
}
