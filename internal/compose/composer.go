// Package compose builds the model prompt, calls the chat model once and
// falls back to the gathered evidence when the reply is unusable.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"ai-mood-gateway/internal/cache"
	"ai-mood-gateway/internal/common/logger"
	"ai-mood-gateway/internal/common/metrics"
	"ai-mood-gateway/internal/common/observability"
	"ai-mood-gateway/internal/llm"
	"ai-mood-gateway/internal/mood"
	"ai-mood-gateway/internal/search"
)

const (
	minReplyChars = 5

	InsufficientInformation = "Maaf, saya belum menemukan informasi yang cukup untuk menjawab pertanyaan ini dengan akurat. Coba tanyakan lagi dengan kata kunci yang lebih spesifik."
)

var ErrReplyTooShort = errors.New("REPLY_TOO_SHORT")

// Answer is the composed reply.
type Answer struct {
	Mode         mood.Mode
	Confidence   float64
	EvidenceUsed bool
	Sources      []search.Hit
	Result       string
	Fallback     bool
}

type Composer struct {
	model   llm.ChatModel
	persona mood.Persona
	cache   *cache.Persistent
	tracing *observability.Tracing
	log     logger.Logger
	now     func() time.Time
}

func NewComposer(model llm.ChatModel, persona mood.Persona, persistent *cache.Persistent, tracing *observability.Tracing, log logger.Logger) *Composer {
	return &Composer{
		model:   model,
		persona: persona,
		cache:   persistent,
		tracing: tracing,
		log:     log.With(map[string]interface{}{"component": "composer", "model": model.Name()}),
		now:     time.Now,
	}
}

// Compose answers question from evidence. Model failures are never
// returned; the answer falls back to the evidence or to a fixed message.
func (c *Composer) Compose(ctx context.Context, question string, evidence []search.RankedHit, mode mood.Mode, confidence float64) (*Answer, error) {
	ctx, span := c.tracing.StartSpan(ctx, "chat.compose",
		attribute.String("mode", string(mode)),
		attribute.Int("evidence", len(evidence)),
	)
	defer span.End()

	answer := &Answer{
		Mode:         mode,
		Confidence:   confidence,
		EvidenceUsed: len(evidence) > 0,
		Sources:      search.Sources(evidence),
	}

	prompt := c.BuildPrompt(question, evidence, mode)
	reply, err := c.callModel(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := fallbackReason(err)
		metrics.FallbackTotal.WithLabelValues(reason).Inc()
		span.SetAttributes(attribute.String("fallback", reason))
		c.log.Warn("model reply unusable, using fail-safe answer", map[string]interface{}{
			"reason":   reason,
			"error":    err,
			"evidence": len(evidence),
		})

		answer.Fallback = true
		answer.Result = StripDisclaimers(FailSafe(evidence))
		return answer, nil
	}

	answer.Result = StripDisclaimers(MaskIdentity(reply, c.persona.Name))
	if n := utf8.RuneCountInString(answer.Result); n < minReplyChars {
		metrics.FallbackTotal.WithLabelValues("short_reply").Inc()
		span.SetAttributes(attribute.String("fallback", "short_reply"))
		c.log.Warn("model reply too short after scrubbing, using fail-safe answer", map[string]interface{}{
			"chars":    n,
			"evidence": len(evidence),
		})
		answer.Fallback = true
		answer.Result = StripDisclaimers(FailSafe(evidence))
		return answer, nil
	}

	c.cache.StoreAsync(question, answer.Result)
	return answer, nil
}

func (c *Composer) callModel(ctx context.Context, prompt string) (string, error) {
	reply, err := c.model.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if utf8.RuneCountInString(reply) < minReplyChars {
		return "", fmt.Errorf("%w: %d chars", ErrReplyTooShort, utf8.RuneCountInString(reply))
	}
	return reply, nil
}

// BuildPrompt assembles system instructions, evidence, the current time and
// the sanitized user message.
func (c *Composer) BuildPrompt(question string, evidence []search.RankedHit, mode mood.Mode) string {
	var b strings.Builder

	b.WriteString(c.persona.SystemPrompt(mode, question))
	b.WriteString("\n\n")

	if len(evidence) > 0 {
		b.WriteString("Gunakan informasi berikut untuk menjawab:\n\n")
		b.WriteString(formatEvidence(evidence))
		b.WriteString("\n")
	}
	b.WriteString("Jika informasi yang tersedia tidak cukup, katakan dengan jujur bahwa informasinya belum cukup. Jangan mengarang fakta.\n")
	fmt.Fprintf(&b, "Waktu sekarang: %s\n\n", c.now().Format("Monday, 2 January 2006 15:04 MST"))

	b.WriteString("User: ")
	b.WriteString(SanitizeInput(question))
	return b.String()
}

// FailSafe builds an answer directly from evidence.
func FailSafe(evidence []search.RankedHit) string {
	if len(evidence) == 0 {
		return InsufficientInformation
	}
	return "Berikut informasi yang saya temukan:\n\n" + formatEvidence(evidence)
}

func formatEvidence(evidence []search.RankedHit) string {
	var b strings.Builder
	for i, e := range evidence {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Title)
		if e.Snippet != "" {
			b.WriteString(e.Snippet)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Sumber: %s\n\n", e.Link)
	}
	return b.String()
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrReplyTooShort):
		return "short_reply"
	case errors.Is(err, llm.ErrEmptyReply):
		return "empty_reply"
	case errors.Is(err, llm.ErrMalformedResponse):
		return "malformed_reply"
	default:
		return "model_error"
	}
}
