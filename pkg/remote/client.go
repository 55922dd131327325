// Package remote wraps calls to a hosted text generation service with a
// per-attempt timeout, bounded retries, a request quota and a circuit
// breaker.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/humor"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultTimeout bounds a single generation attempt.
const DefaultTimeout = 5 * time.Second

// Options selects and parameterizes the provider.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration

	RateLimit  int
	RateWindow time.Duration
}

func (o Options) withDefaults() Options {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	if o.Provider == "" {
		o.Provider = ProviderOpenAI
	}
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RateWindow <= 0 {
		o.RateWindow = DefaultRateWindow
	}
	return o
}

// Generator produces raw text for a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// Factory builds the Generator for a set of credentials.
type Factory func(ctx context.Context, opts Options) (Generator, error)

// DefaultFactory builds OpenAI generators on hc and Gemini generators on
// the genai SDK.
func DefaultFactory(hc *http.Client) Factory {
	return func(ctx context.Context, opts Options) (Generator, error) {
		switch opts.Provider {
		case ProviderOpenAI:
			return NewOpenAIGenerator(opts, hc), nil
		case ProviderGemini:
			return NewGeminiGenerator(ctx, opts)
		default:
			return nil, fmt.Errorf("unknown provider %q", opts.Provider)
		}
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithFactory replaces the transport factory.
func WithFactory(f Factory) Option {
	return func(c *Client) { c.factory = f }
}

// WithGenerator uses g whenever credentials are configured.
func WithGenerator(g Generator) Option {
	return WithFactory(func(context.Context, Options) (Generator, error) { return g, nil })
}

// WithRetry overrides the retry schedule.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithBreaker overrides the failure threshold and cooldown.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(c *Client) { c.breaker = NewBreaker("remote", threshold, cooldown) }
}

// WithQuota replaces the in-process request window.
func WithQuota(q Quota) Option {
	return func(c *Client) { c.quota = q }
}

// WithTokenCounter replaces the prompt token counter.
func WithTokenCounter(tc TokenCounter) Option {
	return func(c *Client) { c.tokens = tc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client is safe for concurrent use.
type Client struct {
	factory Factory
	retry   RetryConfig
	breaker *Breaker
	quota   Quota
	latency *LatencyTracker
	log     zerolog.Logger
	failLog rate.Sometimes

	mu         sync.RWMutex
	opts       Options
	gen        Generator
	tokens     TokenCounter
	ownsTokens bool
}

// Status is a point in time view of the client.
type Status struct {
	Available          bool          `json:"available"`
	Provider           string        `json:"provider"`
	Model              string        `json:"model,omitempty"`
	RateLimitRemaining int           `json:"rate_limit_remaining"`
	AvgLatency         time.Duration `json:"avg_latency_ns"`
	Breaker            BreakerStatus `json:"circuit_breaker"`
}

// New returns a client for opts. Transport setup errors are logged and
// leave the client unavailable.
func New(opts Options, options ...Option) *Client {
	c := &Client{
		factory: DefaultFactory(nil),
		retry:   DefaultRetry(),
		latency: NewLatencyTracker(DefaultLatencySamples),
		log:     zerolog.Nop(),
		failLog: rate.Sometimes{Interval: 30 * time.Second},
	}
	for _, o := range options {
		o(c)
	}
	if c.breaker == nil {
		c.breaker = NewBreaker("remote", DefaultFailureThreshold, DefaultCooldown)
	}
	if c.quota == nil {
		c.quota = NewWindowQuota(opts.RateLimit, opts.RateWindow)
	}
	c.ownsTokens = c.tokens == nil

	if err := c.Configure(opts); err != nil {
		c.log.Warn().Err(err).Msg("remote generation disabled")
	}
	return c
}

// Configure swaps credentials and limits in place. An empty API key marks
// the client unavailable. A changed model gets a fresh token encoding unless
// a counter was injected.
func (c *Client) Configure(opts Options) error {
	opts = opts.withDefaults()
	c.quota.SetLimit(opts.RateLimit, opts.RateWindow)

	var (
		gen Generator
		err error
	)
	if opts.APIKey != "" {
		gen, err = c.factory(context.Background(), opts)
		if err != nil {
			gen = nil
			err = fmt.Errorf("configure %s transport: %w", opts.Provider, err)
		}
	}

	c.mu.Lock()
	if c.ownsTokens && (c.tokens == nil || c.opts.Model != opts.Model) {
		tc := NewTiktokenCounter(opts.Model)
		if gen != nil {
			tc.Warm()
		}
		c.tokens = tc
	}
	c.opts = opts
	c.gen = gen
	c.mu.Unlock()

	c.log.Debug().
		Str("provider", opts.Provider).
		Bool("available", gen != nil).
		Dur("timeout", opts.Timeout).
		Msg("remote client configured")
	return err
}

// Available reports whether credentials and a transport are configured.
func (c *Client) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen != nil
}

// RequestAnnotation asks the provider for a one-line joke about the
// classified log. It returns ErrCircuitOpen, ErrUnavailable or
// ErrRateLimited without touching the network, and otherwise the error of
// the last failed attempt.
func (c *Client) RequestAnnotation(ctx context.Context, res classify.Result, level humor.Level) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("remote generation panicked: %v", r)
		}
	}()

	if c.breaker.IsOpen() {
		requestsTotal.WithLabelValues("circuit_open").Inc()
		return "", ErrCircuitOpen
	}

	c.mu.RLock()
	gen, opts, tokens := c.gen, c.opts, c.tokens
	c.mu.RUnlock()
	if gen == nil {
		requestsTotal.WithLabelValues("unavailable").Inc()
		return "", ErrUnavailable
	}
	if !c.quota.Take(ctx) {
		requestsTotal.WithLabelValues("rate_limited").Inc()
		return "", ErrRateLimited
	}

	prompt := BuildPrompt(res, level, tokens)
	promptTokens.Observe(float64(tokens.Count(prompt.System) + tokens.Count(prompt.User)))

	start := time.Now()
	text, err = c.breaker.Execute(func() (string, error) {
		return retry(ctx, c.retry, c.log, func(ctx context.Context, _ int) (string, error) {
			return attempt(ctx, gen, prompt, opts.Timeout)
		})
	})
	elapsed := time.Since(start)
	generationLatency.Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			requestsTotal.WithLabelValues("circuit_open").Inc()
			return "", err
		}
		requestsTotal.WithLabelValues("failure").Inc()
		c.failLog.Do(func() {
			c.log.Warn().Err(err).Str("provider", opts.Provider).Msg("remote generation failed")
		})
		return "", err
	}

	requestsTotal.WithLabelValues("success").Inc()
	c.latency.Add(elapsed)
	return text, nil
}

type attemptResult struct {
	text string
	err  error
}

// attempt races one generation against timeout and validates the output.
func attempt(ctx context.Context, gen Generator, p Prompt, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()
		text, err := gen.Generate(ctx, p)
		done <- attemptResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		return Clean(r.text)
	case <-ctx.Done():
		return "", fmt.Errorf("generation timed out after %s: %w", timeout, ctx.Err())
	}
}

// Breaker exposes the circuit breaker.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Status reports availability, remaining quota and breaker state.
func (c *Client) Status(ctx context.Context) Status {
	c.mu.RLock()
	opts, available := c.opts, c.gen != nil
	c.mu.RUnlock()

	return Status{
		Available:          available,
		Provider:           opts.Provider,
		Model:              opts.Model,
		RateLimitRemaining: c.quota.Remaining(ctx),
		AvgLatency:         c.latency.Average(),
		Breaker:            c.breaker.Status(),
	}
}
