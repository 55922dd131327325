package remote

import (
	"fmt"
	"strings"

	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/humor"
)

// excerptTokens caps how much of the log text is sent upstream.
const excerptTokens = 200

// Prompt is what a Generator sends to its provider.
type Prompt struct {
	System string
	User   string
}

var personas = map[humor.Level]string{
	humor.LevelMild:   "friendly and encouraging; tease gently, never mock",
	humor.LevelMedium: "playfully sarcastic, like a coworker who has seen this bug before",
	humor.LevelSavage: "a merciless roast of the code and the log, never of people",
}

// BuildPrompt describes the classified log and the desired tone.
// The excerpt is the sanitized text, trimmed to a token budget.
func BuildPrompt(res classify.Result, level humor.Level, tokens TokenCounter) Prompt {
	if tokens == nil {
		tokens = EstimateCounter{}
	}
	persona, ok := personas[level]
	if !ok {
		persona = personas[humor.LevelMedium]
	}

	system := "You are a witty senior engineer who reacts to program log output with one short joke. " +
		"Reply with the joke only: a single sentence under 25 words, no quotes, no emoji, no hashtags. " +
		"Tone: " + persona + "."

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %t\n", res.ErrorLike)
	fmt.Fprintf(&b, "Types: %s\n", joinOr(res.DataTypes, "none"))
	fmt.Fprintf(&b, "Complexity: %s\n", res.Complexity)
	fmt.Fprintf(&b, "Sentiment: %s\n", res.Sentiment)
	fmt.Fprintf(&b, "Patterns: %s\n", joinOr(res.Patterns, "none"))
	b.WriteString("Log:\n")
	b.WriteString(tokens.Truncate(res.Sanitized, excerptTokens))

	return Prompt{System: system, User: b.String()}
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
