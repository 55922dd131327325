package storage

import "time"

// Record is one produced annotation and the log call it was made for.
type Record struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Level      string        `json:"level"`
	Text       string        `json:"text"`
	Origin     string        `json:"origin"`
	Confidence float64       `json:"confidence"`
	Cached     bool          `json:"cached"`
	Excerpt    string        `json:"excerpt,omitempty"`
	ErrorLike  bool          `json:"error_like"`
	Complexity string        `json:"complexity"`
	Sentiment  string        `json:"sentiment"`
	Patterns   []string      `json:"patterns,omitempty"`
	Duration   time.Duration `json:"duration"`
	RemoteErr  string        `json:"remote_error,omitempty"`
}
