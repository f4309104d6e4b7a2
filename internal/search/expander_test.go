package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mood-gateway/internal/cache"
	"ai-mood-gateway/internal/common/logger"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]*Result
	errs    map[string]error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls:   map[string]int{},
		results: map[string]*Result{},
		errs:    map[string]error{},
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, query string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[query]++
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	if res, ok := f.results[query]; ok {
		return res, nil
	}
	return &Result{Status: true}, nil
}

func (f *fakeProvider) count(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[query]
}

func newTestExpander(t *testing.T, p Provider, cfg ExpanderConfig) *Expander {
	t.Helper()
	if cfg.RecencySuffix == "" {
		cfg.RecencySuffix = "latest %d update official"
	}
	e := NewExpander(cfg, p, NewRanker(trusted, 5), cache.NewVolatile[[]RankedHit](time.Hour), nil, logger.NewTestLogger(t))
	e.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func hits(links ...string) []Hit {
	out := make([]Hit, len(links))
	for i, l := range links {
		out[i] = Hit{Title: l, Link: l}
	}
	return out
}

func TestExpander_Queries(t *testing.T) {
	e := newTestExpander(t, newFakeProvider(), ExpanderConfig{})
	assert.Equal(t, []string{"harga emas", "harga emas latest 2026 update official"}, e.Queries("harga emas"))

	e.config.RecencySuffix = "terbaru"
	assert.Equal(t, []string{"q", "q terbaru"}, e.Queries("q"))
}

func TestExpander_DedupesInFirstSeenOrder(t *testing.T) {
	p := newFakeProvider()
	p.results["q"] = &Result{Status: true, Hits: hits("https://a", "https://b", "https://c")}
	p.results["q latest 2026 update official"] = &Result{Status: true, Hits: hits("https://b", "https://d", "https://e", "https://f")}

	got := newTestExpander(t, p, ExpanderConfig{}).Expand(context.Background(), "q")

	links := make([]string, len(got))
	for i, h := range got {
		links[i] = h.Link
	}
	assert.Equal(t, []string{"https://a", "https://b", "https://c", "https://d", "https://e"}, links)
}

func TestExpander_SubSearchFailureIsIsolated(t *testing.T) {
	p := newFakeProvider()
	p.errs["q"] = errors.New("connection reset")
	p.results["q latest 2026 update official"] = &Result{Status: true, Hits: hits("https://x.gov")}

	got := newTestExpander(t, p, ExpanderConfig{}).Expand(context.Background(), "q")

	require.Len(t, got, 1)
	assert.Equal(t, "https://x.gov", got[0].Link)
	assert.Equal(t, 6, got[0].Score)
}

func TestExpander_UnsuccessfulStatusYieldsEmpty(t *testing.T) {
	p := newFakeProvider()
	p.results["q"] = &Result{Status: false, Hits: hits("https://ignored")}
	p.errs["q latest 2026 update official"] = ErrMalformedResponse

	e := newTestExpander(t, p, ExpanderConfig{})
	assert.Empty(t, e.Expand(context.Background(), "q"))

	// failures are not cached
	e.Expand(context.Background(), "q")
	assert.Equal(t, 2, p.count("q"))
}

func TestExpander_UsesVolatileCache(t *testing.T) {
	p := newFakeProvider()
	p.results["q"] = &Result{Status: true, Hits: hits("https://a")}

	e := newTestExpander(t, p, ExpanderConfig{})
	first := e.Expand(context.Background(), "q")
	second := e.Expand(context.Background(), "q")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.count("q"))
	assert.Equal(t, 1, p.count("q latest 2026 update official"))
}

func TestExpander_KeyNormalization(t *testing.T) {
	p := newFakeProvider()

	raw := newTestExpander(t, p, ExpanderConfig{})
	raw.Expand(context.Background(), "Harga  Emas")
	raw.Expand(context.Background(), "harga emas")
	assert.Equal(t, 1, p.count("Harga  Emas"))
	assert.Equal(t, 1, p.count("harga emas"))

	p2 := newFakeProvider()
	norm := newTestExpander(t, p2, ExpanderConfig{NormalizeKeys: true})
	norm.Expand(context.Background(), "Harga  Emas")
	norm.Expand(context.Background(), "harga emas")
	assert.Equal(t, 1, p2.count("Harga  Emas"))
	assert.Equal(t, 0, p2.count("harga emas"))
}

func TestMerge(t *testing.T) {
	rh := func(links ...string) []RankedHit {
		out := make([]RankedHit, len(links))
		for i, l := range links {
			out[i] = RankedHit{Hit: Hit{Link: l}}
		}
		return out
	}

	got := Merge(5, rh("1", "2", "3"), rh("3", "2", "4", "5", "6", "7"))
	require.Len(t, got, 5)

	var links []string
	for _, h := range got {
		links = append(links, h.Link)
	}
	assert.Equal(t, "1,2,3,4,5", strings.Join(links, ","))
	assert.Empty(t, Merge(5))
}
