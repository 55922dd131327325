package remote

import (
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures and trims prompt text in model tokens.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, max int) string
}

// TiktokenCounter counts with the BPE encoding of the configured model.
// The encoding is fetched in the background on first use and the counter
// uses a rune based estimate until it is ready or when it cannot be loaded.
type TiktokenCounter struct {
	model string
	load  func(model string) (*tiktoken.Tiktoken, error)

	once sync.Once
	tkm  atomic.Pointer[tiktoken.Tiktoken]
	done chan struct{}
}

// NewTiktokenCounter returns a counter for model.
func NewTiktokenCounter(model string) *TiktokenCounter {
	return newTiktokenCounter(model, loadEncoding)
}

func newTiktokenCounter(model string, load func(string) (*tiktoken.Tiktoken, error)) *TiktokenCounter {
	return &TiktokenCounter{model: model, load: load, done: make(chan struct{})}
}

func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown model, use the gpt-4 family encoding.
		return tiktoken.GetEncoding("cl100k_base")
	}
	return tkm, nil
}

// Model is the model the encoding is chosen for.
func (c *TiktokenCounter) Model() string {
	return c.model
}

// Warm starts the encoding fetch without waiting for it.
func (c *TiktokenCounter) Warm() {
	c.once.Do(func() {
		go func() {
			defer close(c.done)
			tkm, err := c.load(c.model)
			if err != nil || tkm == nil {
				return
			}
			c.tkm.Store(tkm)
		}()
	})
}

// Ready is closed once the fetch has finished, successfully or not.
func (c *TiktokenCounter) Ready() <-chan struct{} {
	return c.done
}

// encoding never blocks; nil means the estimate is used.
func (c *TiktokenCounter) encoding() *tiktoken.Tiktoken {
	c.Warm()
	return c.tkm.Load()
}

func (c *TiktokenCounter) Count(text string) int {
	tkm := c.encoding()
	if tkm == nil {
		return EstimateCounter{}.Count(text)
	}
	return len(tkm.Encode(text, nil, nil))
}

func (c *TiktokenCounter) Truncate(text string, max int) string {
	tkm := c.encoding()
	if tkm == nil {
		return EstimateCounter{}.Truncate(text, max)
	}
	if max <= 0 {
		return ""
	}
	ids := tkm.Encode(text, nil, nil)
	if len(ids) <= max {
		return text
	}
	return tkm.Decode(ids[:max])
}

// EstimateCounter assumes four runes per token.
type EstimateCounter struct{}

const runesPerToken = 4

func (EstimateCounter) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + runesPerToken - 1) / runesPerToken
}

func (EstimateCounter) Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	limit := max * runesPerToken
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
