package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// maxKeyInput bounds how much normalized text feeds the digest.
const maxKeyInput = 500

// MakeKey derives a fixed-length fingerprint from text. Case, punctuation and
// whitespace differences do not change the key: every run of non-alphanumeric
// characters collapses to a single separator.
func MakeKey(text string) string {
	hash := sha256.Sum256([]byte(normalize(text)))
	return hex.EncodeToString(hash[:])
}

func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	runes := 0
	space := false
	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			space = b.Len() > 0
			continue
		}

		if space {
			if runes+1 >= maxKeyInput {
				break
			}
			b.WriteByte(' ')
			runes++
			space = false
		}
		if runes >= maxKeyInput {
			break
		}
		b.WriteRune(r)
		runes++
	}
	return b.String()
}
