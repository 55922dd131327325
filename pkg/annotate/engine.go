// Package annotate turns a classified logging call into a humorous
// annotation: cached if possible, remote if eligible, local otherwise.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ngoyal88/quip/pkg/cache"
	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/config"
	"github.com/ngoyal88/quip/pkg/humor"
	"github.com/ngoyal88/quip/pkg/phrases"
	"github.com/ngoyal88/quip/pkg/remote"
	"github.com/ngoyal88/quip/pkg/storage"
)

// DefaultJournalTimeout bounds one asynchronous journal write.
const DefaultJournalTimeout = 2 * time.Second

// Options wires an Engine. Start Config from config.Default(); nil
// collaborators are built from it.
type Options struct {
	Config  config.Config
	Remote  *remote.Client
	Phrases *phrases.Table
	Cache   *cache.Cache
	Journal storage.Store
	Logger  zerolog.Logger

	JournalTimeout time.Duration
}

// Engine is safe for concurrent use.
type Engine struct {
	cache   *cache.Cache
	remote  *remote.Client
	phrases *phrases.Table
	journal storage.Store
	log     zerolog.Logger

	journalTimeout time.Duration
	pending        sync.WaitGroup

	mu          sync.RWMutex
	level       humor.Level
	fallback    bool
	preferLocal bool
}

// Status is the read-only snapshot for observers.
type Status struct {
	Level   string        `json:"level"`
	Cache   cache.Stats   `json:"cache"`
	Remote  remote.Status `json:"remote"`
	Journal bool          `json:"journal"`
}

// New builds an engine.
func New(opts Options) *Engine {
	cfg := opts.Config

	e := &Engine{
		cache:          opts.Cache,
		remote:         opts.Remote,
		phrases:        opts.Phrases,
		journal:        opts.Journal,
		log:            opts.Logger,
		journalTimeout: opts.JournalTimeout,
		level:          cfg.HumorLevel(),
		fallback:       cfg.Remote.FallbackToLocal,
		preferLocal:    cfg.Remote.PreferLocal,
	}
	if e.cache == nil {
		e.cache = cache.New(cfg.Cache.Size)
	}
	if e.remote == nil {
		e.remote = remote.New(RemoteOptions(cfg.Remote), remote.WithLogger(e.log))
	}
	if e.phrases == nil {
		e.phrases = phrases.NewTable()
	}
	if e.journalTimeout <= 0 {
		e.journalTimeout = DefaultJournalTimeout
	}
	return e
}

// RemoteOptions maps the remote config section onto client options.
func RemoteOptions(rc config.RemoteConfig) remote.Options {
	return remote.Options{
		Provider:   rc.Provider,
		APIKey:     rc.APIKey,
		Model:      rc.Model,
		BaseURL:    rc.BaseURL,
		Timeout:    rc.Timeout(),
		RateLimit:  rc.RateLimit,
		RateWindow: rc.RateWindow,
	}
}

type settings struct {
	level    humor.Level
	fallback bool
	eligible bool
}

func (e *Engine) settings() settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return settings{
		level:    e.level,
		fallback: e.fallback,
		eligible: e.remote.Available() && !e.preferLocal,
	}
}

// Annotate classifies values and produces their annotation.
func (e *Engine) Annotate(ctx context.Context, values ...any) humor.Annotation {
	return e.Produce(ctx, values, classify.Classify(values...))
}

// Produce never fails: every path ends in a non-empty annotation. Each
// step runs under its own recover guard so a fault only skips that step.
func (e *Engine) Produce(ctx context.Context, values []any, res classify.Result) humor.Annotation {
	start := time.Now()
	s := e.settings()

	if res.IsZero() {
		e.guard("classify", func() { res = classify.Classify(values...) })
	}

	var key string
	caching := e.guard("cache key", func() { key = Key(res, s.level) })

	if caching {
		var (
			entry cache.Entry
			hit   bool
		)
		caching = e.guard("cache lookup", func() { entry, hit = e.cache.Get(key) })
		if hit && entry.Annotation.Text != "" {
			ann := entry.Annotation
			ann.Cached = true
			e.finish(ann, res, s.level, start, nil)
			return ann
		}
	}

	var remoteErr error
	if s.eligible {
		var text string
		e.guard("remote", func() {
			text, remoteErr = e.remote.RequestAnnotation(ctx, res, s.level)
		})
		if remoteErr == nil && text != "" {
			ann := humor.Remote(text)
			if caching {
				e.guard("cache write", func() { e.cache.Put(key, ann) })
			}
			e.finish(ann, res, s.level, start, nil)
			return ann
		}
		if remoteErr == nil {
			remoteErr = errors.New("remote step failed")
		}
		e.log.Debug().Err(remoteErr).Msg("remote generation skipped, using local phrase")

		if !s.fallback {
			ann := humor.Local(e.backstop(s.level))
			e.finish(ann, res, s.level, start, remoteErr)
			return ann
		}
	}

	ann := humor.Local(e.localPhrase(res, s.level))
	if caching {
		e.guard("cache write", func() { e.cache.Put(key, ann) })
	}
	e.finish(ann, res, s.level, start, remoteErr)
	return ann
}

// localPhrase walks trigger matches, the derived category, general, then
// the built-in backstop.
func (e *Engine) localPhrase(res classify.Result, level humor.Level) (text string) {
	ok := e.guard("local phrase", func() {
		if p, found := e.phrases.Pick(e.phrases.LookupByTriggers(res, level)); found {
			text = p
			return
		}
		if p, found := e.phrases.RandomFromCategory(phrases.CategoryFor(res), level); found {
			text = p
			return
		}
		if p, found := e.phrases.RandomFromCategory(phrases.CategoryGeneral, level); found {
			text = p
		}
	})
	if !ok || strings.TrimSpace(text) == "" {
		return e.backstop(level)
	}
	return text
}

func (e *Engine) backstop(level humor.Level) (text string) {
	if !e.guard("backstop", func() { text = e.phrases.Backstop(level) }) || text == "" {
		return phrases.Fallback(level)
	}
	return text
}

// guard runs fn, converting a panic into a logged, skipped step.
func (e *Engine) guard(step string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			stepFailures.WithLabelValues(step).Inc()
			e.log.Error().Str("step", step).Interface("panic", r).Msg("step recovered")
			ok = false
		}
	}()
	fn()
	return true
}

func (e *Engine) finish(ann humor.Annotation, res classify.Result, level humor.Level, start time.Time, remoteErr error) {
	elapsed := time.Since(start)
	annotationsTotal.WithLabelValues(string(ann.Origin), fmt.Sprint(ann.Cached)).Inc()
	produceLatency.Observe(elapsed.Seconds())

	if e.journal == nil {
		return
	}

	rec := &storage.Record{
		Timestamp:  start,
		Level:      level.String(),
		Text:       ann.Text,
		Origin:     string(ann.Origin),
		Confidence: ann.Confidence,
		Cached:     ann.Cached,
		Excerpt:    excerpt(res.Sanitized),
		ErrorLike:  res.ErrorLike,
		Complexity: string(res.Complexity),
		Sentiment:  string(res.Sentiment),
		Patterns:   res.Patterns,
		Duration:   elapsed,
	}
	if remoteErr != nil {
		rec.RemoteErr = remoteErr.Error()
	}

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.journalTimeout)
		defer cancel()
		if err := e.journal.SaveRecord(ctx, rec); err != nil {
			e.log.Warn().Err(err).Msg("journal write failed")
		}
	}()
}

const excerptLen = 120

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen]) + "..."
}

// Wait blocks until pending journal writes finish.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// Reconfigure validates cfg and applies it in place. When remote
// eligibility changes the cache is cleared so entries produced under the
// old routing are not served.
func (e *Engine) Reconfigure(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}

	before := e.settings().eligible

	e.cache.SetCapacity(cfg.Cache.Size)
	if err := e.remote.Configure(RemoteOptions(cfg.Remote)); err != nil {
		e.log.Warn().Err(err).Msg("remote generation disabled")
	}

	e.mu.Lock()
	e.level = cfg.HumorLevel()
	e.fallback = cfg.Remote.FallbackToLocal
	e.preferLocal = cfg.Remote.PreferLocal
	e.mu.Unlock()

	after := e.settings().eligible
	if before != after {
		e.cache.Clear()
		e.log.Info().Bool("remote", after).Msg("remote eligibility changed, cache cleared")
	}

	e.log.Debug().
		Str("level", cfg.HumorLevel().String()).
		Int("cache_size", cfg.Cache.Size).
		Bool("remote", after).
		Msg("engine reconfigured")
	return nil
}

// Level returns the configured humor level.
func (e *Engine) Level() humor.Level {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level
}

// Status reports cache, remote client and journal state.
func (e *Engine) Status(ctx context.Context) Status {
	return Status{
		Level:   e.Level().String(),
		Cache:   e.cache.Stats(),
		Remote:  e.remote.Status(ctx),
		Journal: e.journal != nil,
	}
}

// Cleanup drops cache entries idle for longer than maxAge.
func (e *Engine) Cleanup(maxAge time.Duration) int {
	n := e.cache.Cleanup(maxAge)
	if n > 0 {
		e.log.Debug().Int("removed", n).Msg("cache cleanup")
	}
	return n
}

// ClearCache empties the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Journal returns the attached journal, or nil.
func (e *Engine) Journal() storage.Store {
	return e.journal
}
