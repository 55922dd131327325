package annotate

import (
	"strings"

	"github.com/ngoyal88/quip/pkg/cache"
	"github.com/ngoyal88/quip/pkg/classify"
	"github.com/ngoyal88/quip/pkg/humor"
)

// Key derives the cache key for a classified call at level. Signals come
// before the text so input truncation never drops them.
func Key(res classify.Result, level humor.Level) string {
	errorFlag := "ok"
	if res.ErrorLike {
		errorFlag = "err"
	}

	parts := []string{
		"level " + level.String(),
		errorFlag,
		string(res.Complexity),
		string(res.Sentiment),
		"types " + strings.Join(res.DataTypes, " "),
		"patterns " + strings.Join(res.Patterns, " "),
		"text " + res.Sanitized,
	}
	return cache.MakeKey(strings.Join(parts, " | "))
}
