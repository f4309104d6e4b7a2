package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "ai-mood-gateway/internal/common/errors"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
)

// ErrNotFound is returned by a Store when the key has no live value.
var ErrNotFound = errors.New("NOT_FOUND")

// Store is a durable key/value backend for answers.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Name() string
}

// Persistent is the best-effort answer cache in front of a Store. It never
// returns an error to callers; failures are logged and treated as misses.
// A nil Store disables it.
type Persistent struct {
	store   Store
	ttl     time.Duration
	timeout time.Duration
	log     logger.Logger

	wg sync.WaitGroup
}

func NewPersistent(store Store, ttl, timeout time.Duration, log logger.Logger) *Persistent {
	return &Persistent{
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		log:     log.With(map[string]interface{}{"component": "persistent-cache"}),
	}
}

func (p *Persistent) Enabled() bool {
	return p != nil && p.store != nil
}

// Lookup returns a cached answer for question.
func (p *Persistent) Lookup(ctx context.Context, question string) (string, bool) {
	if !p.Enabled() {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	answer, err := p.store.Get(ctx, question)
	switch {
	case err == nil && answer != "":
		metrics.CacheLookups.WithLabelValues("persistent", "hit").Inc()
		return answer, true
	case err == nil, errors.Is(err, ErrNotFound):
		metrics.CacheLookups.WithLabelValues("persistent", "miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("persistent", "error").Inc()
		p.log.Warn("cache lookup failed", map[string]interface{}{
			"backend": p.store.Name(),
			"error":   apperrors.NewCacheUnavailableError("lookup", err),
		})
	}
	return "", false
}

// StoreAsync writes answer in the background. The result is discarded.
func (p *Persistent) StoreAsync(question, answer string) {
	if !p.Enabled() || question == "" || answer == "" {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("cache store panicked", map[string]interface{}{"panic": r})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.store.Set(ctx, question, answer, p.ttl); err != nil {
			p.log.Warn("cache store failed", map[string]interface{}{
				"backend": p.store.Name(),
				"error":   apperrors.NewCacheUnavailableError("store", err),
			})
		}
	}()
}

// Wait blocks until pending writes finish.
func (p *Persistent) Wait() {
	if p != nil {
		p.wg.Wait()
	}
}

// Ping checks the backend. A disabled cache is always healthy.
func (p *Persistent) Ping(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.store.Ping(ctx)
}
