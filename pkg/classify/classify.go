// Package classify turns arbitrary logged values into a sanitized text form and
// a structured description of what was logged: data types, complexity tier,
// sentiment and structural pattern tags.
//
// Classification is a pure function of its input and never panics.
package classify

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Complexity is a coarse size/shape tier of a logging call.
type Complexity string

const (
	Simple  Complexity = "simple"
	Medium  Complexity = "medium"
	Complex Complexity = "complex"
)

// Sentiment is the overall polarity of the logged text.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Pattern tags.
const (
	PatternError     = "error"
	PatternSuccess   = "success"
	PatternDeveloper = "developer"
	PatternJSON      = "json"
	PatternArray     = "array"
	PatternNumeric   = "numeric"
	PatternURL       = "url"
	PatternDate      = "date"
	PatternCode      = "code"
)

// Result describes one logging call.
type Result struct {
	DataTypes  []string   `json:"data_types"`
	Complexity Complexity `json:"complexity"`
	ErrorLike  bool       `json:"error_like"`
	Sentiment  Sentiment  `json:"sentiment"`
	Patterns   []string   `json:"patterns"`
	Sanitized  string     `json:"sanitized"`

	Score    int `json:"score"`
	MaxDepth int `json:"max_depth"`
}

// IsZero reports whether r was never filled in by Classify.
func (r Result) IsZero() bool {
	return r.Complexity == "" && r.Sentiment == "" && len(r.DataTypes) == 0
}

// HasType reports whether label is among the detected data types.
func (r Result) HasType(label string) bool {
	return slices.Contains(r.DataTypes, label)
}

// HasPattern reports whether tag is among the detected patterns.
func (r Result) HasPattern(tag string) bool {
	return slices.Contains(r.Patterns, tag)
}

// Classify analyses the values handed to one logging call.
func Classify(values ...any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = coerced(values)
		}
	}()

	types := make(map[string]struct{}, len(values))
	parts := make([]string, 0, len(values))
	deepest := 0
	typedError := false

	for _, v := range values {
		label := typeOf(v)
		types[label] = struct{}{}
		if label == TypeError {
			typedError = true
		}

		text, depth := serialize(v)
		parts = append(parts, text)
		if depth > deepest {
			deepest = depth
		}
	}

	raw := strings.Join(parts, " ")
	return build(raw, len(values), deepest, sortedKeys(types), typedError)
}

// coerced is the degraded path for values whose shape defeated serialization.
func coerced(values []any) Result {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return build(strings.Join(parts, " "), len(values), 0, []string{TypeUnknown}, false)
}

func build(raw string, argc, depth int, types []string, typedError bool) Result {
	sig := analyze(raw)
	errorLike := sig.errorLike || typedError

	score := lengthPoints(utf8.RuneCountInString(raw)) + argPoints(argc) + depthPoints(depth)
	if errorLike {
		score++
	}

	errScore, okScore := sig.negativeWords, sig.positiveWords
	if errorLike {
		errScore += 2
	}
	if sig.success {
		okScore += 2
	}

	sentiment := Neutral
	switch {
	case okScore > errScore:
		sentiment = Positive
	case errScore > okScore:
		sentiment = Negative
	}

	patterns := sig.patterns
	if errorLike && !slices.Contains(patterns, PatternError) {
		patterns = append(patterns, PatternError)
	}
	slices.Sort(patterns)

	return Result{
		DataTypes:  types,
		Complexity: tier(score),
		ErrorLike:  errorLike,
		Sentiment:  sentiment,
		Patterns:   patterns,
		Sanitized:  Sanitize(raw),
		Score:      score,
		MaxDepth:   depth,
	}
}

func lengthPoints(n int) int {
	switch {
	case n > 5000:
		return 3
	case n > 1000:
		return 2
	case n > 50:
		return 1
	}
	return 0
}

func argPoints(n int) int {
	switch {
	case n > 8:
		return 3
	case n > 5:
		return 2
	case n > 3:
		return 1
	}
	return 0
}

func depthPoints(d int) int {
	switch {
	case d > 4:
		return 3
	case d > 3:
		return 2
	case d > 1:
		return 1
	}
	return 0
}

func tier(score int) Complexity {
	switch {
	case score >= 4:
		return Complex
	case score >= 1:
		return Medium
	}
	return Simple
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
