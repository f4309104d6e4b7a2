package search

import "math"

const (
	emptyConfidence = 0.40
	baseConfidence  = 0.55
	perPointBoost   = 0.04
	maxConfidence   = 0.97
)

// Confidence maps the mean score of the evidence to [0.40, 0.97]. It is
// advisory and never changes control flow.
func Confidence(ranked []RankedHit) float64 {
	if len(ranked) == 0 {
		return emptyConfidence
	}

	total := 0
	for _, r := range ranked {
		total += r.Score
	}
	mean := float64(total) / float64(len(ranked))

	c := baseConfidence + mean*perPointBoost
	if c > maxConfidence {
		c = maxConfidence
	}
	return math.Round(c*100) / 100
}
