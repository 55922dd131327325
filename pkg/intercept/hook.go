// Package intercept wraps a line-logging function so that each call is
// followed, asynchronously, by a humorous annotation line.
package intercept

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ngoyal88/quip/pkg/humor"
)

// Printer is a line-logging function.
type Printer func(values ...any)

// WriterPrinter prints space separated values as one line on w. Lines from
// concurrent callers do not interleave.
func WriterPrinter(w io.Writer) Printer {
	var mu sync.Mutex
	return func(values ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, values...)
	}
}

// Annotator produces the annotation for one logging call.
type Annotator interface {
	Annotate(ctx context.Context, values ...any) humor.Annotation
	Level() humor.Level
}

// Options gates which calls are annotated.
type Options struct {
	Enabled bool
	// Frequency is the percentage (0-100) of calls that get an annotation.
	Frequency int
}

// Option customizes a Hook.
type Option func(*Hook)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Hook) { h.log = l }
}

// WithContext sets the parent context of annotation requests.
func WithContext(ctx context.Context) Option {
	return func(h *Hook) { h.ctx = ctx }
}

// Hook owns the original and the wrapped Printer for one target.
type Hook struct {
	target    *Printer
	annotator Annotator
	log       zerolog.Logger
	ctx       context.Context
	pending   sync.WaitGroup

	mu        sync.Mutex
	original  Printer
	current   Printer
	installed bool
	opts      Options
	counter   int
}

// New returns an uninstalled hook for target.
func New(target *Printer, annotator Annotator, opts Options, options ...Option) *Hook {
	h := &Hook{
		target:    target,
		annotator: annotator,
		opts:      clamp(opts),
		ctx:       context.Background(),
	}
	for _, o := range options {
		o(h)
	}
	return h
}

func clamp(opts Options) Options {
	opts.Frequency = max(0, min(100, opts.Frequency))
	return opts
}

// Install replaces *target with the annotating wrapper. Installing twice
// is a no-op.
func (h *Hook) Install() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return
	}

	h.original = *h.target
	if h.original == nil {
		h.original = func(...any) {}
	}
	h.current = h.print
	*h.target = h.current
	h.installed = true
	h.log.Debug().Msg("hook installed")
}

// Uninstall restores the original Printer. Uninstalling twice is a no-op.
func (h *Hook) Uninstall() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed {
		return
	}

	*h.target = h.original
	h.current = nil
	h.installed = false
	h.log.Debug().Msg("hook uninstalled")
}

// Installed reports whether the wrapper is in place.
func (h *Hook) Installed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.installed
}

// SetOptions applies new gating options to subsequent calls.
func (h *Hook) SetOptions(opts Options) {
	h.mu.Lock()
	h.opts = clamp(opts)
	h.mu.Unlock()
}

// Wait blocks until every in-flight annotation has been printed or dropped.
func (h *Hook) Wait() {
	h.pending.Wait()
}

// admit is the frequency gate: a rolling counter modulo 100, so exactly
// Frequency of every 100 consecutive calls are annotated.
func (h *Hook) admit() (Printer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.opts.Enabled {
		return h.original, false
	}
	n := h.counter
	h.counter = (h.counter + 1) % 100
	return h.original, n < h.opts.Frequency
}

func (h *Hook) print(values ...any) {
	original, ok := h.admit()
	original(values...)
	if !ok {
		return
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				h.log.Error().Interface("panic", r).Msg("annotation dropped")
			}
		}()

		ann := h.annotator.Annotate(h.ctx, values...)
		if ann.Text == "" {
			return
		}
		original(h.annotator.Level().Prefix() + " " + ann.Text)
	}()
}
