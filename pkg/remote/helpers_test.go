package remote

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/humor"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  'Nice one!'  ", want: "Nice one!"},
		{in: `"quoted"`, want: "quoted"},
		{in: "`tick`", want: "tick"},
		{in: "“curly”", want: "curly"},
		{in: `" 'nested' "`, want: "nested"},
		{in: "it's fine", want: "it's fine"},
		{in: `"`, want: `"`},
		{in: "   ", wantErr: true},
		{in: `""`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := Clean(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrEmptyGeneration) {
				t.Errorf("Clean(%q) error = %v, want ErrEmptyGeneration", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Clean(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestCleanTruncates(t *testing.T) {
	got, err := Clean(strings.Repeat("ab ", 100))
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(got); n > MaxAnnotationLen {
		t.Errorf("len = %d, want <= %d", n, MaxAnnotationLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Clean() = %q, want ellipsis", got)
	}
}

func TestRetryDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := cfg.delay(i + 1); got != w {
			t.Errorf("delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestWindowQuotaResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &WindowQuota{now: func() time.Time { return now }}
	q.SetLimit(2, time.Minute)
	ctx := context.Background()

	if !q.Take(ctx) || !q.Take(ctx) {
		t.Fatal("Take() refused within quota")
	}
	if q.Take(ctx) {
		t.Fatal("Take() allowed beyond quota")
	}

	now = now.Add(time.Minute)
	if got := q.Remaining(ctx); got != 2 {
		t.Errorf("Remaining() after reset = %d, want 2", got)
	}
	if !q.Take(ctx) {
		t.Error("Take() refused after window reset")
	}
}

func TestBuildPrompt(t *testing.T) {
	res := classify.Classify("Error: password=hunter2 failed", 42)
	p := BuildPrompt(res, humor.LevelSavage, EstimateCounter{})

	if !strings.Contains(p.System, "roast") {
		t.Errorf("System prompt missing savage persona: %q", p.System)
	}
	for _, want := range []string{"Error: true", "number", "string", "negative"} {
		if !strings.Contains(p.User, want) {
			t.Errorf("User prompt missing %q:\n%s", want, p.User)
		}
	}
	if strings.Contains(p.User, "hunter2") {
		t.Error("User prompt leaks a secret")
	}
}

func TestEstimateCounterTruncate(t *testing.T) {
	var c EstimateCounter
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := c.Truncate("abcdefghij", 2); got != "abcdefgh" {
		t.Errorf("Truncate() = %q", got)
	}
	if got := c.Truncate("abc", 0); got != "" {
		t.Errorf("Truncate(0) = %q", got)
	}
}

func TestWindowQuotaUnlimited(t *testing.T) {
	q := NewWindowQuota(0, time.Minute)
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		if !q.Take(ctx) {
			t.Fatalf("Take() refused at %d with no limit", i)
		}
	}
	if got := q.Remaining(ctx); got != -1 {
		t.Errorf("Remaining() = %d, want -1", got)
	}
}

func TestLatencyTrackerRollingAverage(t *testing.T) {
	lt := NewLatencyTracker(2)
	if got := lt.Average(); got != 0 {
		t.Fatalf("Average() on empty = %s, want 0", got)
	}
	lt.Add(100 * time.Millisecond)
	lt.Add(200 * time.Millisecond)
	lt.Add(400 * time.Millisecond)
	if got := lt.Average(); got != 300*time.Millisecond {
		t.Errorf("Average() = %s, want 300ms", got)
	}
}

func TestWindowQuotaSetLimitKeepsSpentUnits(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &WindowQuota{now: func() time.Time { return now }}
	q.SetLimit(3, time.Minute)
	ctx := context.Background()
	q.Take(ctx)
	q.Take(ctx)

	q.SetLimit(3, time.Minute)
	if got := q.Remaining(ctx); got != 1 {
		t.Errorf("Remaining() after same limit = %d, want 1", got)
	}

	q.SetLimit(5, time.Minute)
	if got := q.Remaining(ctx); got != 5 {
		t.Errorf("Remaining() after new limit = %d, want 5", got)
	}
}

// stalledLoad blocks until release is closed, like a BPE fetch that never
// gets an answer.
func stalledLoad(release <-chan struct{}) func(string) (*tiktoken.Tiktoken, error) {
	return func(string) (*tiktoken.Tiktoken, error) {
		<-release
		return nil, errors.New("fetch encoding: connection reset")
	}
}

func TestTiktokenCounterEstimatesWhileLoading(t *testing.T) {
	release := make(chan struct{})
	c := newTiktokenCounter("gpt-4o", stalledLoad(release))

	done := make(chan string, 1)
	go func() { done <- c.Truncate("abcdefghijkl", 2) }()
	select {
	case got := <-done:
		if got != "abcdefgh" {
			t.Errorf("Truncate() = %q, want rune estimate", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Truncate() blocked on the encoding load")
	}
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	close(release)
	select {
	case <-c.Ready():
	case <-time.After(time.Second):
		t.Fatal("load never finished")
	}
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("Count() after failed load = %d, want estimate 2", got)
	}
}
