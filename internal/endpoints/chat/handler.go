// internal/endpoints/chat/handler.go
package chat

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
	"ai-mood-gateway/internal/compose"
	"ai-mood-gateway/internal/mood"
	"ai-mood-gateway/internal/search"
)

const (
	EndpointName = "chat"
	maxBodyBytes = 1 << 20
)

type Limiter interface {
	Admit(clientID string) bool
}

type AnswerCache interface {
	Lookup(ctx context.Context, question string) (string, bool)
}

type Expander interface {
	Expand(ctx context.Context, query string) []search.RankedHit
}

type Composer interface {
	Compose(ctx context.Context, question string, evidence []search.RankedHit, mode mood.Mode, confidence float64) (*compose.Answer, error)
}

// Deps are the collaborators of the chat pipeline.
type Deps struct {
	Limiter  Limiter
	Cache    AnswerCache
	Expander Expander
	Composer Composer
	Errors   *errors.ErrorHandler
	Tracing  *observability.Tracing
	Obs      *observability.Observability
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
	message, _ := doc["message"].(string)

	ctx := r.Context()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	output, err := h.execute(ctx, &Input{Message: message, ClientID: httpclient.ClientIP(r)})
	if err != nil {
		outcome = outcomeFor(err)
		h.deps.Errors.Write(w, r, err)
		return
	}

	outcome = output.outcome
	errors.WriteJSON(w, http.StatusOK, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, errors.NewInputEmptyError("message", errors.MsgMessageEmpty)
	}

	if !h.deps.Limiter.Admit(input.ClientID) {
		metrics.RateLimitedTotal.Inc()
		return nil, errors.NewRateLimitedError(input.ClientID)
	}

	if answer, ok := h.deps.Cache.Lookup(ctx, message); ok {
		h.logger.Info("answered from persistent cache", map[string]interface{}{"clientId": input.ClientID})
		return &Output{
			Status:     true,
			SearchUsed: false,
			Cached:     true,
			Result:     answer,
			outcome:    "cached",
		}, nil
	}

	mode := mood.Classify(message)

	expandCtx, span := h.deps.Tracing.StartSpan(ctx, "chat.expand", attribute.String("mode", string(mode)))
	evidence := h.deps.Expander.Expand(expandCtx, message)
	span.SetAttributes(attribute.Int("evidence", len(evidence)))
	span.End()

	confidence := search.Confidence(evidence)

	answer, err := h.deps.Composer.Compose(ctx, message, evidence, mode, confidence)
	if err != nil {
		return nil, errors.NewUpstreamModelError(err)
	}

	h.logger.Info("chat answered", map[string]interface{}{
		"clientId":   input.ClientID,
		"mode":       string(mode),
		"evidence":   len(evidence),
		"confidence": confidence,
		"fallback":   answer.Fallback,
	})

	out := &Output{
		Status:     true,
		Mode:       string(answer.Mode),
		Confidence: &answer.Confidence,
		SearchUsed: answer.EvidenceUsed,
		Result:     answer.Result,
		outcome:    "ok",
	}
	if answer.EvidenceUsed {
		out.Sources = answer.Sources
	}
	if answer.Fallback {
		out.outcome = "fallback"
	}
	return out, nil
}

// Execute runs the pipeline without the HTTP layer.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func outcomeFor(err error) string {
	switch errors.Normalize(err).Code {
	case errors.ErrCodeInputEmpty, errors.ErrCodeInputInvalid:
		return "rejected"
	case errors.ErrCodeRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}
