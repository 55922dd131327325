package remote

import (
	"strings"
	"unicode/utf8"
)

// MaxAnnotationLen is the longest annotation accepted from a provider, in runes.
const MaxAnnotationLen = 150

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'`':  '`',
	'“':  '”',
	'‘':  '’',
}

// Clean trims whitespace and wrapping quotes and bounds the length.
// An empty result is an error.
func Clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	for {
		stripped := stripQuotes(s)
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	if s == "" {
		return "", ErrEmptyGeneration
	}

	if utf8.RuneCountInString(s) > MaxAnnotationLen {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:MaxAnnotationLen-3])) + "..."
	}
	return s, nil
}

func stripQuotes(s string) string {
	first, fsize := utf8.DecodeRuneInString(s)
	last, lsize := utf8.DecodeLastRuneInString(s)
	if len(s) < fsize+lsize {
		return s
	}
	if closing, ok := quotePairs[first]; ok && closing == last {
		return s[fsize : len(s)-lsize]
	}
	return s
}
