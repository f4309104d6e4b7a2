// cmd/gateway/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai-mood-gateway/internal/cache"
	"ai-mood-gateway/internal/common/config"
	"ai-mood-gateway/internal/common/database"
	"ai-mood-gateway/internal/common/errors"
	httpclient "ai-mood-gateway/internal/common/http"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
	"ai-mood-gateway/internal/common/observability"
	"ai-mood-gateway/internal/common/scheduler"
	"ai-mood-gateway/internal/compose"
	"ai-mood-gateway/internal/endpoints/chat"
	"ai-mood-gateway/internal/endpoints/debug"
	"ai-mood-gateway/internal/endpoints/image"
	"ai-mood-gateway/internal/llm"
	"ai-mood-gateway/internal/mood"
	"ai-mood-gateway/internal/ratelimit"
	"ai-mood-gateway/internal/search"
	"ai-mood-gateway/internal/server"
	"ai-mood-gateway/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting gateway...", zap.String("version", cfg.App.Version), zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	tracing, err := observability.NewTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	reg := registry.DefaultRegistry()
	if cfg.Server.RegistryPath != "" {
		if reg, err = registry.LoadRegistry(cfg.Server.RegistryPath); err != nil {
			zapLog.Fatal("endpoint registry load failed", zap.Error(err))
		}
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("endpoint registry invalid", zap.Error(err))
	}

	ctx := context.Background()
	sched := scheduler.New(log)

	// --- Persistent answer cache ---
	persistent, closeStore := initPersistentCache(ctx, cfg, sched, log)
	defer closeStore()

	// --- Upstreams ---
	upstream := httpclient.NewClient(config.GetDuration(cfg.APIs.Neoxr.Timeout))
	neoxrCfg := llm.NeoxrConfig{
		BaseURL: cfg.APIs.Neoxr.BaseURL,
		APIKey:  cfg.APIs.Neoxr.APIKey,
		Session: cfg.APIs.Neoxr.Session,
	}
	neoxrChat := llm.NewNeoxrChat(neoxrCfg, upstream)
	neoxrImage := llm.NewNeoxrImage(neoxrCfg, upstream)
	neoxrSearch := search.NewNeoxrProvider(cfg.APIs.Neoxr.BaseURL, cfg.APIs.Neoxr.APIKey, upstream)

	var model llm.ChatModel = neoxrChat
	if cfg.Model.Provider == "openai" {
		model = llm.NewOpenAIChat(llm.OpenAIConfig{
			BaseURL: cfg.APIs.OpenAI.BaseURL,
			APIKey:  cfg.APIs.OpenAI.APIKey,
			Model:   cfg.APIs.OpenAI.Model,
			Timeout: config.GetDuration(cfg.APIs.OpenAI.Timeout),
		})
	}

	var provider search.Provider = neoxrSearch
	if cfg.Search.Provider == "elasticsearch" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 10, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		provider = search.NewElasticProvider(esClient.Client, cfg.Search.Index, cfg.Search.MaxEvidence*2, config.GetDuration(cfg.Search.TimeoutMs))
		zapLog.Info("Elasticsearch connected successfully")
	}
	zapLog.Info("Upstreams configured", zap.String("model", model.Name()), zap.String("search", provider.Name()))

	// --- Shared request state ---
	limiter := ratelimit.New(cfg.RateLimit.Limit, config.GetDuration(cfg.RateLimit.WindowMs))
	searchCache := cache.NewVolatile[[]search.RankedHit](config.GetDuration(cfg.Cache.ExpireMs))

	expander := search.NewExpander(search.ExpanderConfig{
		RecencySuffix: cfg.Search.RecencySuffix,
		NormalizeKeys: cfg.Cache.NormalizeKeys,
		MaxEvidence:   cfg.Search.MaxEvidence,
	}, provider, search.NewRanker(cfg.Search.TrustedDomains, cfg.Search.MaxEvidence), searchCache, tracing, log)

	persona := mood.Persona{Name: cfg.Assistant.Name, Developer: cfg.Assistant.Developer}
	composer := compose.NewComposer(model, persona, persistent, tracing, log)

	// --- Maintenance jobs ---
	mustSchedule(sched, "search-cache-sweep", cfg.Cache.SweepSpec, func() {
		if n := searchCache.Sweep(); n > 0 {
			log.Info("search cache swept", map[string]interface{}{"evicted": n, "remaining": searchCache.Len()})
		}
	}, zapLog)
	mustSchedule(sched, "rate-limit-eviction", cfg.RateLimit.EvictionSpec, func() {
		evicted := limiter.Sweep()
		metrics.TrackedClients.Set(float64(limiter.Clients()))
		if evicted > 0 {
			log.Info("idle rate limit clients evicted", map[string]interface{}{"evicted": evicted})
		}
	}, zapLog)
	sched.Start()

	// --- Handlers ---
	errHandler := errors.NewErrorHandler(log, cfg.Server.ErrorStatusCodes)
	requestTimeout := config.GetDuration(cfg.Server.WriteTimeout)

	chatEndpoint, _ := reg.Find(registry.IDChat)
	imageEndpoint, _ := reg.Find(registry.IDImage)

	handlers := map[string]http.Handler{
		registry.IDChat: chat.NewHandler(&chat.Config{
			InputSchema: chatEndpoint.InputSchema,
			Timeout:     requestTimeout,
		}, chat.Deps{
			Limiter:  limiter,
			Cache:    persistent,
			Expander: expander,
			Composer: composer,
			Errors:   errHandler,
			Tracing:  tracing,
			Obs:      obs,
		}, log),
		registry.IDImage: image.NewHandler(&image.Config{
			InputSchema: imageEndpoint.InputSchema,
			Timeout:     requestTimeout,
		}, image.Deps{
			Limiter: limiter,
			Model:   neoxrImage,
			Errors:  errHandler,
			Tracing: tracing,
			Obs:     obs,
		}, log),
		registry.IDDebugChat:   debug.NewHandler(registry.IDDebugChat, neoxrChat, upstream, log),
		registry.IDDebugImage:  debug.NewHandler(registry.IDDebugImage, neoxrImage, upstream, log),
		registry.IDDebugSearch: debug.NewHandler(registry.IDDebugSearch, neoxrSearch, upstream, log),
	}

	ready := map[string]server.Pinger{}
	if persistent.Enabled() {
		ready["persistent_cache"] = persistent
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.New(reg, handlers, ready, errHandler, log).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		zapLog.Info("Gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	persistent.Wait()

	zapLog.Info("Gateway stopped gracefully")
}

// initPersistentCache connects the configured backend. A backend that stays
// unreachable disables the cache instead of stopping the gateway.
func initPersistentCache(ctx context.Context, cfg *config.Config, sched *scheduler.Scheduler, log logger.Logger) (*cache.Persistent, func()) {
	ttl := config.GetDuration(cfg.PersistentCache.TTLMs)
	timeout := config.GetDuration(cfg.PersistentCache.TimeoutMs)
	disabled := cache.NewPersistent(nil, ttl, timeout, log)

	switch cfg.PersistentCache.Backend {
	case "redis":
		var rc *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 5, 2*time.Second, log, "Redis connection")
		if err != nil {
			log.Error("persistent cache disabled", map[string]interface{}{"backend": "redis", "error": err})
			if rc != nil {
				_ = rc.Close()
			}
			return disabled, func() {}
		}
		log.Info("Redis connected successfully", nil)
		store := cache.NewRedisStore(rc.Client, cfg.PersistentCache.KeyPrefix)
		return cache.NewPersistent(store, ttl, timeout, log), func() { _ = rc.Close() }

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			log.Error("persistent cache disabled", map[string]interface{}{"backend": "postgres", "error": err})
			if pg != nil {
				_ = pg.Close()
			}
			return disabled, func() {}
		}

		store, err := cache.NewPostgresStore(pg.DB, cfg.PersistentCache.Table)
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			log.Error("persistent cache disabled", map[string]interface{}{"backend": "postgres", "error": err})
			_ = pg.Close()
			return disabled, func() {}
		}
		log.Info("PostgreSQL connected successfully", nil)

		if err := sched.Add("persistent-cache-purge", cfg.Cache.SweepSpec, func() {
			purgeCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			n, err := store.Purge(purgeCtx)
			if err != nil {
				log.Warn("persistent cache purge failed", map[string]interface{}{"error": err})
				return
			}
			if n > 0 {
				log.Info("expired answers purged", map[string]interface{}{"purged": n})
			}
		}); err != nil {
			log.Warn("persistent cache purge not scheduled", map[string]interface{}{"error": err})
		}
		return cache.NewPersistent(store, ttl, timeout, log), func() { _ = pg.Close() }
	}

	return disabled, func() {}
}

func mustSchedule(s *scheduler.Scheduler, name, spec string, job func(), log *zap.Logger) {
	if err := s.Add(name, spec, job); err != nil {
		log.Fatal("job scheduling failed", zap.Error(err))
	}
}
