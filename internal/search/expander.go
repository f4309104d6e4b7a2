package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"ai-mood-gateway/internal/cache"
	apperrors "ai-mood-gateway/internal/common/errors"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
	"ai-mood-gateway/internal/common/observability"
)

const cacheKeyPrefix = "search:"

// ExpanderConfig holds the query expansion settings.
type ExpanderConfig struct {
	RecencySuffix string // fmt pattern, one %d for the current year
	NormalizeKeys bool
	MaxEvidence   int
}

// Expander runs the question and a recency-biased variant as two ranked
// searches and merges the results.
type Expander struct {
	config   ExpanderConfig
	provider Provider
	ranker   *Ranker
	cache    *cache.Volatile[[]RankedHit]
	tracing  *observability.Tracing
	log      logger.Logger
	now      func() time.Time
}

func NewExpander(config ExpanderConfig, provider Provider, ranker *Ranker, c *cache.Volatile[[]RankedHit], tracing *observability.Tracing, log logger.Logger) *Expander {
	if config.MaxEvidence <= 0 {
		config.MaxEvidence = DefaultMaxEvidence
	}
	return &Expander{
		config:   config,
		provider: provider,
		ranker:   ranker,
		cache:    c,
		tracing:  tracing,
		log:      log.With(map[string]interface{}{"component": "search-expander", "provider": provider.Name()}),
		now:      time.Now,
	}
}

// Queries returns the sub-queries Expand runs for query.
func (e *Expander) Queries(query string) []string {
	suffix := e.config.RecencySuffix
	if strings.Contains(suffix, "%d") {
		suffix = fmt.Sprintf(suffix, e.now().Year())
	}
	if suffix == "" {
		return []string{query}
	}
	return []string{query, query + " " + suffix}
}

// Expand returns merged evidence: first-seen order, unique by link, capped.
// A failing sub-search contributes nothing; it never fails the whole call.
func (e *Expander) Expand(ctx context.Context, query string) []RankedHit {
	queries := e.Queries(query)
	results := make([][]RankedHit, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			results[i] = e.rankedSearch(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	return Merge(e.config.MaxEvidence, results...)
}

func (e *Expander) rankedSearch(ctx context.Context, query string) []RankedHit {
	ctx, span := e.tracing.StartSpan(ctx, "search.sub", attribute.String("query", query))
	defer span.End()

	key := e.cacheKey(query)
	if hits, ok := e.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("volatile", "hit").Inc()
		span.SetAttributes(attribute.Bool("cached", true))
		return hits
	}
	metrics.CacheLookups.WithLabelValues("volatile", "miss").Inc()

	start := time.Now()
	result, err := e.provider.Search(ctx, query)
	metrics.UpstreamDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		e.log.Warn("sub-search failed", map[string]interface{}{
			"error": apperrors.NewSearchFailedError(query, err),
		})
		return nil
	}
	if !result.Status {
		e.log.Info("search provider returned unsuccessful status", map[string]interface{}{"query": query})
		return nil
	}

	ranked := e.ranker.Rank(result.Hits)
	e.cache.Put(key, ranked)
	span.SetAttributes(attribute.Int("hits", len(ranked)))
	return ranked
}

func (e *Expander) cacheKey(query string) string {
	if e.config.NormalizeKeys {
		query = strings.ToLower(strings.Join(strings.Fields(query), " "))
	}
	return cacheKeyPrefix + query
}

// Merge concatenates ranked lists, keeps the first occurrence of each link
// and truncates to max.
func Merge(max int, lists ...[]RankedHit) []RankedHit {
	seen := make(map[string]struct{})
	out := make([]RankedHit, 0, max)
	for _, list := range lists {
		for _, h := range list {
			if len(out) == max {
				return out
			}
			if _, dup := seen[h.Link]; dup {
				continue
			}
			seen[h.Link] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}
