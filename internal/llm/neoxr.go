package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpclient "ai-mood-gateway/internal/common/http"
	"ai-mood-gateway/internal/common/metrics"
)

// NeoxrConfig holds the hosted API settings.
type NeoxrConfig struct {
	BaseURL string
	APIKey  string
	Session string
}

// NeoxrChat calls the session-scoped hosted chat endpoint.
type NeoxrChat struct {
	config NeoxrConfig
	client *httpclient.Client
}

func NewNeoxrChat(config NeoxrConfig, client *httpclient.Client) *NeoxrChat {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &NeoxrChat{config: config, client: client}
}

func (c *NeoxrChat) Name() string { return "neoxr" }

// RequestURL returns the upstream URL for prompt.
func (c *NeoxrChat) RequestURL(prompt string) string {
	params := url.Values{}
	params.Set("q", prompt)
	params.Set("session", c.config.Session)
	params.Set("apikey", c.config.APIKey)
	return c.config.BaseURL + "/gpt4-session?" + params.Encode()
}

func (c *NeoxrChat) Chat(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	status, body, err := c.client.Get(ctx, c.RequestURL(prompt))
	metrics.UpstreamDuration.WithLabelValues("model").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelFailed, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: model API returned %d", ErrModelFailed, status)
	}
	return extractReply(body)
}

// NeoxrImage calls the hosted image generation endpoint.
type NeoxrImage struct {
	config NeoxrConfig
	client *httpclient.Client
}

func NewNeoxrImage(config NeoxrConfig, client *httpclient.Client) *NeoxrImage {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &NeoxrImage{config: config, client: client}
}

// RequestURL returns the upstream URL for prompt.
func (c *NeoxrImage) RequestURL(prompt string) string {
	params := url.Values{}
	params.Set("q", prompt)
	params.Set("apikey", c.config.APIKey)
	return c.config.BaseURL + "/bardimg?" + params.Encode()
}

func (c *NeoxrImage) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	status, body, err := c.client.Get(ctx, c.RequestURL(prompt))
	metrics.UpstreamDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageFailed, err)
	}
	if status >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: image API returned %d", ErrImageFailed, status)
	}
	imageURL, err := extractImageURL(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageFailed, err)
	}
	return imageURL, nil
}
