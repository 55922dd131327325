package classify

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		name          string
		values        []any
		wantErrorLike bool
		wantSentiment Sentiment
		wantPattern   string
	}{
		{
			name:          "error line",
			values:        []any{"Error: db down"},
			wantErrorLike: true,
			wantSentiment: Negative,
			wantPattern:   PatternError,
		},
		{
			name:          "success line",
			values:        []any{"Success: saved"},
			wantSentiment: Positive,
			wantPattern:   PatternSuccess,
		},
		{
			name:          "neutral line",
			values:        []any{"user clicked the button"},
			wantSentiment: Neutral,
		},
		{
			name:          "error value",
			values:        []any{errors.New("connection reset by peer")},
			wantErrorLike: true,
			wantSentiment: Negative,
			wantPattern:   PatternError,
		},
		{
			name:          "polarity words tip the balance",
			values:        []any{"the build is working great and the bug is fixed"},
			wantSentiment: Positive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.values...)
			if res.ErrorLike != tt.wantErrorLike {
				t.Errorf("ErrorLike = %v, want %v", res.ErrorLike, tt.wantErrorLike)
			}
			if res.Sentiment != tt.wantSentiment {
				t.Errorf("Sentiment = %q, want %q", res.Sentiment, tt.wantSentiment)
			}
			if tt.wantPattern != "" && !res.HasPattern(tt.wantPattern) {
				t.Errorf("Patterns = %v, want to contain %q", res.Patterns, tt.wantPattern)
			}
		})
	}
}

func TestClassifyDataTypes(t *testing.T) {
	var nilMap map[string]int
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	res := Classify("msg", 42, 3.5, true, nil, nilMap, []int{1, 2}, map[string]any{"a": 1},
		struct{ Name string }{"x"}, ts, errors.New("boom"), func() {})

	want := []string{
		TypeArray, TypeBoolean, TypeDate, TypeError, TypeFunction,
		TypeNull, TypeNumber, TypeObject, TypeString,
	}
	if strings.Join(res.DataTypes, ",") != strings.Join(want, ",") {
		t.Errorf("DataTypes = %v, want %v", res.DataTypes, want)
	}
}

func TestClassifySerialization(t *testing.T) {
	res := Classify("user", map[string]any{"id": 7}, []string{"a", "b"}, nil, 12)
	want := `user {"id":7} ["a","b"] null 12`
	if res.Sanitized != want {
		t.Errorf("Sanitized = %q, want %q", res.Sanitized, want)
	}
	if !res.HasPattern(PatternJSON) || !res.HasPattern(PatternArray) {
		t.Errorf("Patterns = %v, want json and array", res.Patterns)
	}
}

type node struct {
	Name string
	Next *node
}

func TestClassifySelfReferentialGraphs(t *testing.T) {
	n := &node{Name: "loop"}
	n.Next = n

	m := map[string]any{"k": "v"}
	m["self"] = m

	s := []any{"x", nil}
	s[1] = s

	for _, v := range []any{n, m, s} {
		res := Classify(v)
		if !strings.Contains(res.Sanitized, "[Circular]") {
			t.Errorf("Sanitized = %q, want circular marker", res.Sanitized)
		}
	}
}

func TestClassifyDepthIsCapped(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < 25; i++ {
		v = map[string]any{"n": v}
	}

	res := Classify(v)
	if res.MaxDepth != MaxDepth {
		t.Errorf("MaxDepth = %d, want %d", res.MaxDepth, MaxDepth)
	}
	if !strings.Contains(res.Sanitized, "[Max depth]") {
		t.Errorf("expected depth marker in %q", res.Sanitized)
	}
}

type panicky struct{}

func (panicky) String() string { panic("nope") }

func TestClassifyNeverPanics(t *testing.T) {
	ch := make(chan int)
	res := Classify(panicky{}, ch, complex(1, 2))
	if res.Complexity == "" || res.Sentiment == "" {
		t.Fatalf("expected a degraded but complete result, got %+v", res)
	}
	if !res.HasType(TypeUnknown) {
		t.Errorf("DataTypes = %v, want unknown", res.DataTypes)
	}
}

func TestComplexityTiers(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   Complexity
	}{
		{name: "short string", values: []any{"hi"}, want: Simple},
		{name: "medium length", values: []any{strings.Repeat("a", 60)}, want: Medium},
		{name: "nested object", values: []any{map[string]any{"a": map[string]any{"b": 1}}}, want: Medium},
		{
			name:   "long text many args and an error",
			values: []any{strings.Repeat("x ", 600), "error", 1, 2, 3, 4},
			want:   Complex,
		},
		{
			name: "deep nesting with many args",
			values: []any{
				map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": map[string]any{"e": 1}}}}},
				1, 2, 3,
			},
			want: Complex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.values...)
			if res.Complexity != tt.want {
				t.Errorf("Complexity = %q (score %d), want %q", res.Complexity, res.Score, tt.want)
			}
		})
	}
}

func TestPatternFamilies(t *testing.T) {
	tests := []struct {
		text string
		tag  string
	}{
		{"TODO: remove this hack before deploy", PatternDeveloper},
		{"fetched https://example.com/api/v1", PatternURL},
		{"run at 2024-01-15T10:00", PatternDate},
		{"order 48213 shipped", PatternNumeric},
		{"const x = compute()", PatternCode},
		{"goroutine 12 [running]:", PatternError},
	}
	for _, tt := range tests {
		res := Classify(tt.text)
		if !res.HasPattern(tt.tag) {
			t.Errorf("Classify(%q).Patterns = %v, want %q", tt.text, res.Patterns, tt.tag)
		}
	}
}
