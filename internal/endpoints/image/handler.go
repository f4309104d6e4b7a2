// internal/endpoints/image/handler.go
package image

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ai-mood-gateway/internal/common/errors"
	httpclient "ai-mood-gateway/internal/common/http"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
	"ai-mood-gateway/internal/common/observability"
	"ai-mood-gateway/internal/common/validation"
	"ai-mood-gateway/internal/llm"
)

const (
	EndpointName = "image"
	maxBodyBytes = 1 << 20
)

type Limiter interface {
	Admit(clientID string) bool
}

type Deps struct {
	Limiter Limiter
	Model   llm.ImageModel
	Errors  *errors.ErrorHandler
	Tracing *observability.Tracing
	Obs     *observability.Observability
}

type Handler struct {
	config *Config
	deps   Deps
	logger logger.Logger
}

func NewHandler(config *Config, deps Deps, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.With(map[string]interface{}{
			"endpoint": EndpointName,
		}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.RequestsTotal.WithLabelValues(EndpointName, outcome).Inc()
		h.deps.Obs.RecordRequest(r.Context(), EndpointName, outcome, time.Since(start))
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		outcome = "rejected"
		h.deps.Errors.Write(w, r, errors.NewInputInvalidError(err.Error()))
		return
	}
	doc, err := validation.ValidateBody(h.config.InputSchema, body)
	if err != nil {
		outcome = "rejected"
		h.deps.Errors.Write(w, r, errors.NewInputInvalidError(err.Error()))
		return
	}
	prompt, _ := doc["prompt"].(string)

	ctx := r.Context()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	output, err := h.Execute(ctx, &Input{Prompt: prompt, ClientID: httpclient.ClientIP(r)})
	if err != nil {
		switch errors.Normalize(err).Code {
		case errors.ErrCodeInputEmpty:
			outcome = "rejected"
		case errors.ErrCodeRateLimited:
			outcome = "rate_limited"
		}
		h.deps.Errors.Write(w, r, err)
		return
	}

	outcome = "ok"
	errors.WriteJSON(w, http.StatusOK, output)
}

// Execute validates the prompt, applies the rate limit and calls the image model.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, errors.NewInputEmptyError("prompt", errors.MsgPromptEmpty)
	}

	if !h.deps.Limiter.Admit(input.ClientID) {
		metrics.RateLimitedTotal.Inc()
		return nil, errors.NewRateLimitedError(input.ClientID)
	}

	ctx, span := h.deps.Tracing.StartSpan(ctx, "image.generate", attribute.Int("prompt_chars", len(prompt)))
	defer span.End()

	url, err := h.deps.Model.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewUpstreamImageError(err)
	}

	out := &Output{Status: true}
	if url != "" {
		out.Image = &url
	} else {
		h.logger.Warn("image upstream returned no url", map[string]interface{}{"clientId": input.ClientID})
	}
	return out, nil
}
