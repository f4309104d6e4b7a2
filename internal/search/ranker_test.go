package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trusted = []string{".go.id", ".gov", "wikipedia.org", "kompas.com"}

func TestRanker_Score(t *testing.T) {
	r := NewRanker(trusted, 5)

	tests := []struct {
		name string
		hit  Hit
		want int
	}{
		{"plain", Hit{Title: "short", Snippet: "short", Link: "https://blog.example.com"}, 0},
		{"trusted", Hit{Link: "https://www.kompas.com/a"}, 6},
		{"cumulative trusted", Hit{Link: "https://id.wikipedia.org/kompas.com"}, 12},
		{"long snippet", Hit{Snippet: strings.Repeat("a", 121), Link: "x"}, 2},
		{"snippet at boundary", Hit{Snippet: strings.Repeat("a", 120), Link: "x"}, 0},
		{"long title", Hit{Title: strings.Repeat("t", 21), Link: "x"}, 1},
		{"title at boundary", Hit{Title: strings.Repeat("t", 20), Link: "x"}, 0},
		{"case insensitive link", Hit{Link: "https://PAJAK.GO.ID/info"}, 6},
		{"everything", Hit{Title: strings.Repeat("t", 30), Snippet: strings.Repeat("s", 200), Link: "https://kemenkeu.go.id"}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Score(tt.hit))
		})
	}
}

func TestRanker_TrustedOutranksUntrusted(t *testing.T) {
	r := NewRanker(trusted, 5)
	hits := []Hit{
		{Title: "Harga BBM", Snippet: "naik", Link: "https://random-blog.net/bbm"},
		{Title: "Harga BBM", Snippet: "naik", Link: "https://esdm.go.id/bbm"},
	}

	ranked := r.Rank(hits)
	require.Len(t, ranked, 2)
	assert.Equal(t, "https://esdm.go.id/bbm", ranked[0].Link)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRanker_StableTiesAndTruncation(t *testing.T) {
	r := NewRanker(trusted, 5)
	var hits []Hit
	for _, l := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		hits = append(hits, Hit{Link: "https://" + l + ".example"})
	}
	hits = append(hits, Hit{Link: "https://x.gov"})

	ranked := r.Rank(hits)
	require.Len(t, ranked, 5)
	assert.Equal(t, "https://x.gov", ranked[0].Link)
	for i, l := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, "https://"+l+".example", ranked[i+1].Link)
	}
	for _, h := range ranked {
		assert.GreaterOrEqual(t, h.Score, 0)
	}
}

func TestRanker_DeterministicAndIdempotent(t *testing.T) {
	r := NewRanker(trusted, 5)
	hits := []Hit{
		{Title: "Berita terbaru hari ini di Jakarta", Link: "https://kompas.com/1"},
		{Title: "x", Snippet: strings.Repeat("s", 150), Link: "https://b.example"},
		{Title: "y", Link: "https://c.example"},
	}

	first := r.Rank(hits)
	second := r.Rank(hits)
	assert.Equal(t, first, second)

	again := r.Rank(Sources(first))
	assert.Equal(t, first, again)
}

func TestRanker_EmptyInput(t *testing.T) {
	assert.Empty(t, NewRanker(nil, 0).Rank(nil))
}
