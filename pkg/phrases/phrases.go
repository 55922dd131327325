// Package phrases is the local, no-network joke bank. Entries are grouped by
// category and humor level and may carry trigger keywords.
package phrases

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/humor"
)

// Categories.
const (
	CategoryError   = "error"
	CategorySuccess = "success"
	CategoryData    = "data"
	CategoryGeneral = "general"
)

// Entry is one group of interchangeable phrases.
type Entry struct {
	Category string      `json:"category" mapstructure:"category"`
	Level    humor.Level `json:"level" mapstructure:"level"`
	Triggers []string    `json:"triggers,omitempty" mapstructure:"triggers"`
	Phrases  []string    `json:"phrases" mapstructure:"phrases"`
}

// Source is the randomness used for selection. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Table is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
	src     Source
}

// Option customises a Table.
type Option func(*Table)

// WithSource makes selection use src instead of the global generator.
func WithSource(src Source) Option {
	return func(t *Table) { t.src = src }
}

// WithEntries replaces the default bank.
func WithEntries(entries []Entry) Option {
	return func(t *Table) { t.entries = append([]Entry(nil), entries...) }
}

// NewTable returns a table seeded with the default bank.
func NewTable(opts ...Option) *Table {
	t := &Table{
		entries: defaultEntries(),
		src:     globalSource{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add appends an entry. Entries are not deduplicated.
func (t *Table) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// LookupByTriggers returns the entries at level whose triggers appear in the
// classification, or whose category fits it.
func (t *Table) LookupByTriggers(res classify.Result, level humor.Level) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	haystack := strings.ToLower(res.Sanitized)
	var out []Entry
	for _, e := range t.entries {
		if e.Level != level {
			continue
		}
		if triggered(e, res, haystack) || CategoryMatches(e.Category, res) {
			out = append(out, e)
		}
	}
	return out
}

// RandomFromCategory picks a phrase from a random entry of category at level.
func (t *Table) RandomFromCategory(category string, level humor.Level) (string, bool) {
	t.mu.RLock()
	var matches []Entry
	for _, e := range t.entries {
		if e.Category == category && e.Level == level {
			matches = append(matches, e)
		}
	}
	t.mu.RUnlock()

	return t.Pick(matches)
}

// Pick selects one entry uniformly, then one of its phrases uniformly.
func (t *Table) Pick(entries []Entry) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := entries[t.src.IntN(len(entries))]
	if len(e.Phrases) == 0 {
		return "", false
	}
	return e.Phrases[t.src.IntN(len(e.Phrases))], true
}

// Backstop draws from the built-in list for level; it never returns "".
func (t *Table) Backstop(level humor.Level) string {
	list, ok := backstop[level]
	if !ok {
		list = backstop[humor.LevelMild]
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return list[t.src.IntN(len(list))]
}

// Fallback returns the first built-in phrase for level without touching a
// table or its randomness.
func Fallback(level humor.Level) string {
	list, ok := backstop[level]
	if !ok {
		list = backstop[humor.LevelMild]
	}
	return list[0]
}

// CategoryMatches applies the fixed category rules to a classification.
func CategoryMatches(category string, res classify.Result) bool {
	switch category {
	case CategoryError:
		return res.ErrorLike || res.Sentiment == classify.Negative
	case CategorySuccess:
		return res.Sentiment == classify.Positive
	case CategoryData:
		return len(res.DataTypes) > 0
	case CategoryGeneral:
		return true
	}
	return false
}

// CategoryFor picks the single best category: error, then success, then
// data, then general.
func CategoryFor(res classify.Result) string {
	for _, c := range []string{CategoryError, CategorySuccess, CategoryData} {
		if CategoryMatches(c, res) {
			return c
		}
	}
	return CategoryGeneral
}

func triggered(e Entry, res classify.Result, haystack string) bool {
	for _, trig := range e.Triggers {
		trig = strings.ToLower(trig)
		if trig == "" {
			continue
		}
		if containsFold(res.DataTypes, trig) || containsFold(res.Patterns, trig) || strings.Contains(haystack, trig) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
