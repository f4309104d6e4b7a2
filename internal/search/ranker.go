package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	trustedDomainScore = 6
	longSnippetScore   = 2
	longTitleScore     = 1

	longSnippetChars = 120
	longTitleChars   = 20

	DefaultMaxEvidence = 5
)

// Ranker scores hits by source trust and content length.
type Ranker struct {
	trusted []string
	max     int
}

func NewRanker(trustedDomains []string, max int) *Ranker {
	if max <= 0 {
		max = DefaultMaxEvidence
	}
	trusted := make([]string, 0, len(trustedDomains))
	for _, d := range trustedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			trusted = append(trusted, d)
		}
	}
	return &Ranker{trusted: trusted, max: max}
}

// Score returns the relevance score of a single hit. Every trusted domain
// found in the link adds to the score.
func (r *Ranker) Score(hit Hit) int {
	score := 0
	link := strings.ToLower(hit.Link)
	for _, d := range r.trusted {
		if strings.Contains(link, d) {
			score += trustedDomainScore
		}
	}
	if utf8.RuneCountInString(hit.Snippet) > longSnippetChars {
		score += longSnippetScore
	}
	if utf8.RuneCountInString(hit.Title) > longTitleChars {
		score += longTitleScore
	}
	return score
}

// Rank scores hits, sorts them by score descending keeping input order on
// ties, and keeps the top entries.
func (r *Ranker) Rank(hits []Hit) []RankedHit {
	ranked := make([]RankedHit, len(hits))
	for i, h := range hits {
		ranked[i] = RankedHit{Hit: h, Score: r.Score(h)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > r.max {
		ranked = ranked[:r.max]
	}
	return ranked
}
