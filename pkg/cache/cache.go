// Package cache is the bounded response cache sitting in front of joke
// generation. It is a fixed-capacity LRU keyed by content fingerprints.
package cache

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/ngoyal88/quip/pkg/humor"
)

// Entry is one cached annotation.
type Entry struct {
	Annotation  humor.Annotation
	Touched     time.Time // created or last accessed
	AccessCount int
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	lru      *lru.Cache
	entries  map[string]*Entry
	hits     int64
	misses   int64
	now      func() time.Time
}

// Option customises a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache holding at most capacity entries. A capacity of zero
// disables storage entirely.
func New(capacity int, opts ...Option) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	c := &Cache{
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.entries = make(map[string]*Entry)
	c.lru = lru.New(c.capacity)
	c.lru.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(c.entries, key.(string))
		cacheEvictions.Inc()
	}
}

// Get returns the entry for key, refreshing its recency.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		cacheMisses.Inc()
		return Entry{}, false
	}

	e := v.(*Entry)
	e.AccessCount++
	e.Touched = c.now()
	c.hits++
	cacheHits.Inc()
	return *e, true
}

// Put stores annotation under key. Updating an existing key keeps its access
// count; inserting into a full cache evicts the least recently used entry.
func (c *Cache) Put(key string, annotation humor.Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return
	}

	if e, ok := c.entries[key]; ok {
		e.Annotation = annotation
		e.Touched = c.now()
		c.lru.Add(key, e)
		return
	}

	e := &Entry{Annotation: annotation, Touched: c.now()}
	c.entries[key] = e
	c.lru.Add(key, e)
}

// SetCapacity changes the bound, evicting LRU entries as needed.
func (c *Cache) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.capacity = n
	for c.lru.Len() > n {
		c.lru.RemoveOldest()
	}
	c.lru.MaxEntries = n
}

// Capacity returns the current bound.
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats reports size and hit rate. HitRate is 0 before the first lookup.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     c.lru.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Clear drops every entry and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.hits = 0
	c.misses = 0
}

// Cleanup removes entries untouched for longer than maxAge and returns how
// many were dropped.
func (c *Cache) Cleanup(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-maxAge)
	removed := 0
	for key, e := range c.entries {
		if e.Touched.Before(cutoff) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}
