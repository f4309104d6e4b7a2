// internal/endpoints/debug/handler.go
package debug

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"ai-mood-gateway/internal/common/errors"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
)

const DefaultQuery = "test"

// Source is an upstream whose raw response can be inspected.
type Source interface {
	RequestURL(query string) string
}

type Fetcher interface {
	Get(ctx context.Context, url string) (int, []byte, error)
}

// Output is either the untouched upstream body or the transport error.
type Output struct {
	RawResponse interface{} `json:"raw_response,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Handler proxies a single GET to an upstream and returns what came back.
type Handler struct {
	name   string
	source Source
	client Fetcher
	logger logger.Logger
}

func NewHandler(name string, source Source, client Fetcher, log logger.Logger) *Handler {
	return &Handler{
		name:   name,
		source: source,
		client: client,
		logger: log.With(map[string]interface{}{"endpoint": name}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = DefaultQuery
	}

	start := time.Now()
	out := h.Execute(r.Context(), query)
	outcome := "ok"
	if out.Error != "" {
		outcome = "error"
	}
	metrics.RequestsTotal.WithLabelValues(h.name, outcome).Inc()
	h.logger.Debug("debug probe finished", map[string]interface{}{
		"query":    query,
		"outcome":  outcome,
		"duration": time.Since(start).String(),
	})

	errors.WriteJSON(w, http.StatusOK, out)
}

// Execute fetches the upstream URL for query. Non-2xx bodies are returned
// as-is; only transport failures produce an error field.
func (h *Handler) Execute(ctx context.Context, query string) *Output {
	_, body, err := h.client.Get(ctx, h.source.RequestURL(query))
	if err != nil {
		h.logger.Warn("debug probe failed", map[string]interface{}{"error": err})
		return &Output{Error: err.Error()}
	}
	return &Output{RawResponse: raw(body)}
}

func raw(body []byte) interface{} {
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
