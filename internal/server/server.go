// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-mood-gateway/internal/common/errors"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/pkg/registry"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	registry *registry.EndpointRegistry
	handlers map[string]http.Handler
	ready    map[string]Pinger
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

// New builds the router. handlers is keyed by registry endpoint id; the ops
// endpoints (health, ready, metrics) are provided here unless overridden.
// ready lists the dependencies checked by the readiness probe.
func New(reg *registry.EndpointRegistry, handlers map[string]http.Handler, ready map[string]Pinger, errs *errors.ErrorHandler, log logger.Logger) *Server {
	return &Server{
		registry: reg,
		handlers: handlers,
		ready:    ready,
		errors:   errs,
		logger:   log.With(map[string]interface{}{"component": "server"}),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	builtin := map[string]http.Handler{
		registry.IDHealth:  http.HandlerFunc(s.health),
		registry.IDReady:   http.HandlerFunc(s.readiness),
		registry.IDMetrics: promhttp.Handler(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.root)

	for _, ep := range s.registry.Endpoints {
		h, ok := s.handlers[ep.ID]
		if !ok {
			h, ok = builtin[ep.ID]
		}
		if !ok {
			s.logger.Warn("no handler for registered endpoint", map[string]interface{}{"id": ep.ID, "path": ep.Path})
			continue
		}
		mux.Handle(ep.Method+" "+ep.Path, h)
		s.logger.Debug("route registered", map[string]interface{}{"id": ep.ID, "method": ep.Method, "path": ep.Path})
	}

	return withRequestID(withCORS(withLogging(s.logger, s.errors)(mux)))
}

type rootInfo struct {
	Engine    string   `json:"engine"`
	Status    string   `json:"status"`
	Debug     []string `json:"debug"`
	Endpoints []string `json:"endpoints"`
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	errors.WriteJSON(w, http.StatusOK, rootInfo{
		Engine:    s.registry.Engine,
		Status:    "running",
		Debug:     s.registry.Paths(registry.CategoryDebug),
		Endpoints: s.registry.Paths(registry.CategoryAPI),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	errors.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.ready))
	status, code := "ready", http.StatusOK
	for name, p := range s.ready {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "not ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	errors.WriteJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}
