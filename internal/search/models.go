// Package search gathers, ranks and scores web evidence for a question.
package search

import (
	"context"
	"errors"
)

var (
	ErrSearchFailed      = errors.New("SEARCH_FAILED")
	ErrMalformedResponse = errors.New("MALFORMED_RESPONSE")
)

// Hit is a single search result.
type Hit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// RankedHit is a Hit with its relevance score.
type RankedHit struct {
	Hit
	Score int `json:"score"`
}

// Result is a provider response. Status false means the provider reported
// failure and Hits must be ignored.
type Result struct {
	Status bool
	Hits   []Hit
}

// Provider runs one search query.
type Provider interface {
	Search(ctx context.Context, query string) (*Result, error)
	Name() string
}

// Sources strips scores for the response body.
func Sources(ranked []RankedHit) []Hit {
	out := make([]Hit, len(ranked))
	for i, r := range ranked {
		out[i] = r.Hit
	}
	return out
}
