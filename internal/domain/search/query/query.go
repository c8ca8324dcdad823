package query

import (
	"errors"
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search text length.
	MaxQueryLength = 1024
	DefaultLimit   = 10
	MaxLimit       = 100
	// DefaultCandidateRatio is the candidate pool over-fetch factor applied
	// when no pool size is given: candidates = ratio * limit.
	DefaultCandidateRatio = 3
)

// ErrEmptyQuery signals empty or whitespace-only search text.
var ErrEmptyQuery = errors.New("empty search query")

// Query is a validated vector search query.
type Query struct {
	text       string
	limit      int
	candidates int
}

// IsBlank reports whether text is empty after trimming whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// New validates and normalizes search parameters.
// Defaults: limit=10, candidates=3*limit. Candidates never drop below limit.
func New(text string, limit, candidates int) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, ErrEmptyQuery
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if candidates <= 0 {
		candidates = limit * DefaultCandidateRatio
	}
	if candidates < limit {
		candidates = limit
	}

	return Query{text: text, limit: limit, candidates: candidates}, nil
}

// Text returns the trimmed search text.
func (q Query) Text() string { return q.text }

// Limit returns the maximum number of results.
func (q Query) Limit() int { return q.limit }

// Candidates returns the nearest-neighbour candidate pool size.
func (q Query) Candidates() int { return q.candidates }
