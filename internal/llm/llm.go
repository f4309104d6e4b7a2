// Package llm calls the hosted chat and image models.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrModelFailed       = errors.New("MODEL_FAILED")
	ErrMalformedResponse = errors.New("MALFORMED_RESPONSE")
	ErrEmptyReply        = errors.New("EMPTY_REPLY")
	ErrImageFailed       = errors.New("IMAGE_FAILED")
)

// ChatModel produces a text reply for a prompt. One call, no retry.
type ChatModel interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ImageModel produces an image URL for a prompt. An empty URL with a nil
// error means the upstream answered without an image.
type ImageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// replyPaths are tried in order; the first non-empty string wins.
var replyPaths = []string{"data.message", "result", "msg"}

var imagePaths = []string{"data", "result", "url"}

// extractReply pulls the reply text out of a hosted model payload.
func extractReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", ErrMalformedResponse
	}
	doc := gjson.ParseBytes(body)
	if s := doc.Get("status"); s.Exists() && !s.Bool() {
		return "", ErrModelFailed
	}
	if text := firstString(doc, replyPaths); text != "" {
		return text, nil
	}
	return "", ErrEmptyReply
}

func extractImageURL(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", ErrMalformedResponse
	}
	return firstString(gjson.ParseBytes(body), imagePaths), nil
}

func firstString(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		v := doc.Get(p)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}
