package classify

import (
	"regexp"
	"strings"
)

var (
	errorPattern     = regexp.MustCompile(`(?i)\b(errors?|exceptions?|fail(s|ed|ure|ures|ing)?|crash(es|ed|ing)?|fatal|panic(s|ked)?|abort(s|ed)?|traceback)\b`)
	stackPattern     = regexp.MustCompile(`(?m)^\s*at \S+ \(.*:\d+(:\d+)?\)|\.go:\d+|goroutine \d+ \[`)
	successPattern   = regexp.MustCompile(`(?i)\b(success(ful|fully)?|succeed(s|ed)?|completed?|done|saved|ok|passed|finished|ready|resolved)\b`)
	developerPattern = regexp.MustCompile(`(?i)\b(todo|fixme|hack|debug(ging)?|deploy(s|ed|ing|ment)?|refactor(ed|ing)?|commit(ted)?|merged?|console|localhost|npm|git|api|db|database|server|endpoint|cache|query|stack)\b`)
	jsonPattern      = regexp.MustCompile(`(?s)\{.*\}`)
	arrayPattern     = regexp.MustCompile(`(?s)\[.*\]`)
	numericPattern   = regexp.MustCompile(`\d{3,}`)
	urlPattern       = regexp.MustCompile(`(?i)\bhttps?://\S+`)
	datePattern      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2})?)?`)
	codePattern      = regexp.MustCompile(`\bfunc\s*\(|\bfunction\b|=>|\breturn\b|\b(const|let|var)\s+\w+\s*:?=|\w+\(\)\s*[;{]`)

	wordPattern = regexp.MustCompile(`[a-z]+`)
)

var (
	positiveWords = map[string]bool{
		"good": true, "great": true, "working": true, "works": true, "fixed": true, "awesome": true,
		"nice": true, "perfect": true, "excellent": true, "happy": true, "love": true, "yay": true,
		"smooth": true, "fast": true, "clean": true,
	}
	negativeWords = map[string]bool{
		"bad": true, "broken": true, "issue": true, "bug": true, "wrong": true, "slow": true,
		"down": true, "stuck": true, "ugh": true, "terrible": true, "weird": true, "missing": true,
		"timeout": true, "invalid": true, "denied": true,
	}
)

type signals struct {
	errorLike     bool
	success       bool
	positiveWords int
	negativeWords int
	patterns      []string
}

// analyze runs every pattern family independently over the serialized text.
func analyze(text string) signals {
	var s signals

	s.errorLike = errorPattern.MatchString(text) || stackPattern.MatchString(text)
	s.success = successPattern.MatchString(text)

	families := []struct {
		tag     string
		matched bool
	}{
		{PatternError, s.errorLike},
		{PatternSuccess, s.success},
		{PatternDeveloper, developerPattern.MatchString(text)},
		{PatternJSON, jsonPattern.MatchString(text)},
		{PatternArray, arrayPattern.MatchString(text)},
		{PatternNumeric, numericPattern.MatchString(text)},
		{PatternURL, urlPattern.MatchString(text)},
		{PatternDate, datePattern.MatchString(text)},
		{PatternCode, codePattern.MatchString(text)},
	}
	for _, f := range families {
		if f.matched {
			s.patterns = append(s.patterns, f.tag)
		}
	}

	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		switch {
		case positiveWords[w]:
			s.positiveWords++
		case negativeWords[w]:
			s.negativeWords++
		}
	}
	return s
}
