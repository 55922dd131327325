// Package humor holds the vocabulary shared by every stage of the annotation
// pipeline: humor levels, annotation provenance and the annotation itself.
package humor

import (
	"fmt"
	"strings"
)

// Level is the configured intensity of the jokes.
type Level int

const (
	LevelMild Level = iota + 1
	LevelMedium
	LevelSavage
)

// Levels lists every valid level, mildest first.
var Levels = []Level{LevelMild, LevelMedium, LevelSavage}

func (l Level) String() string {
	switch l {
	case LevelMild:
		return "mild"
	case LevelMedium:
		return "medium"
	case LevelSavage:
		return "savage"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valid reports whether l is one of the three tiers.
func (l Level) Valid() bool {
	return l >= LevelMild && l <= LevelSavage
}

// Prefix is the marker printed in front of an annotation line.
func (l Level) Prefix() string {
	switch l {
	case LevelMedium:
		return "😏"
	case LevelSavage:
		return "🔥"
	default:
		return "💡"
	}
}

// ParseLevel accepts the level name (case-insensitive) or its number.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mild", "1":
		return LevelMild, nil
	case "medium", "2":
		return LevelMedium, nil
	case "savage", "3":
		return LevelSavage, nil
	}
	return 0, fmt.Errorf("unknown humor level %q (want mild, medium or savage)", s)
}

// Origin tells where an annotation came from.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Confidence signals provenance trust, not measured quality.
const (
	RemoteConfidence = 0.9
	LocalConfidence  = 0.7
)

// Annotation is the joke attached to a logged line.
type Annotation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Origin     Origin  `json:"origin"`
	Cached     bool    `json:"cached"`
}

// Remote builds a freshly generated remote annotation.
func Remote(text string) Annotation {
	return Annotation{Text: text, Confidence: RemoteConfidence, Origin: OriginRemote}
}

// Local builds a freshly selected local annotation.
func Local(text string) Annotation {
	return Annotation{Text: text, Confidence: LocalConfidence, Origin: OriginLocal}
}
