package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxMaskLen = 8

// detector redacts one capture group (0 = whole match) of every match.
type detector struct {
	name  string
	re    *regexp.Regexp
	group int
}

// Order matters: credential shapes run before the generic digit detectors.
var detectors = []detector{
	{
		name:  "credential",
		re:    regexp.MustCompile(`(?i)\b(api[_-]?key|access[_-]?key|secret(?:[_-]?key)?|client[_-]?secret|(?:auth|access|refresh|id)[_-]?token|token)["']?\s*[:=]\s*["']?([^\s"',;&}]+)`),
		group: 2,
	},
	{
		name:  "bearer",
		re:    regexp.MustCompile(`(?i)\bbearer\s+([A-Za-z0-9\-._~+/]+=*)`),
		group: 1,
	},
	{
		name: "vendor_key",
		re:   regexp.MustCompile(`\b(?:sk|pk|rk)-[A-Za-z0-9_-]{16,}|\bgh[pousr]_[A-Za-z0-9]{20,}|\bAKIA[0-9A-Z]{16}\b|\bxox[abprs]-[A-Za-z0-9-]{10,}|\bAIza[0-9A-Za-z_-]{35}`),
	},
	{
		name:  "password",
		re:    regexp.MustCompile(`(?i)(passw(?:or)?d|\bpwd)["']?\s*[:=]\s*["']?([^\s"',;&}]+)`),
		group: 2,
	},
	{
		name: "email",
		re:   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	},
	{
		name: "credit_card",
		re:   regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
	},
	{
		name: "ssn",
		re:   regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	},
	{
		// A bare digit run is not a phone number: separators or a +/( lead
		// are required so timestamps and ids pass through.
		name: "phone",
		re:   regexp.MustCompile(`(?:\+\d{1,2}[ .-]?\(?\d{3}\)?[ .-]?\d{3}[ .-]?\d{4}|\(\d{3}\)[ .-]?\d{3}[ .-]?\d{4}|\b\d{3}[ .-]\d{3}[ .-]\d{4})\b`),
	},
	{
		name: "private_ip",
		re:   regexp.MustCompile(`\b(?:10\.\d{1,3}\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3})\b`),
	},
}

// Sanitize redacts secrets and personal data from text. Every redaction is a
// run of asterisks at most eight long. Sanitize is idempotent.
func Sanitize(text string) string {
	for {
		next := text
		for _, d := range detectors {
			next = d.redact(next)
		}
		if next == text {
			return next
		}
		text = next
	}
}

func (d detector) redact(text string) string {
	matches := d.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		start, end := m[2*d.group], m[2*d.group+1]
		if start < 0 || start < last {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(mask(text[start:end]))
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func mask(s string) string {
	n := utf8.RuneCountInString(s)
	if n > maxMaskLen {
		n = maxMaskLen
	}
	return strings.Repeat("*", n)
}
