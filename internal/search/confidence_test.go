package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scores(s ...int) []RankedHit {
	out := make([]RankedHit, len(s))
	for i, v := range s {
		out[i] = RankedHit{Score: v}
	}
	return out
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		ranked []RankedHit
		want   float64
	}{
		{"empty", nil, 0.40},
		{"zero scores", scores(0, 0), 0.55},
		{"mean one", scores(1, 1), 0.59},
		{"mean three", scores(6, 0), 0.67},
		{"rounded", scores(1, 0, 0), 0.56},
		{"clamped", scores(18, 12, 12), 0.97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.ranked), 1e-9)
		})
	}
}

func TestConfidence_MonotonicAndBounded(t *testing.T) {
	prev := Confidence(nil)
	for mean := 0; mean <= 30; mean++ {
		c := Confidence(scores(mean, mean))
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 0.97)
		assert.GreaterOrEqual(t, c, 0.40)
		prev = c
	}
}
