// internal/endpoints/chat/models.go
package chat

import "ai-mood-gateway/internal/search"

type Input struct {
	Message  string
	ClientID string
}

type Output struct {
	Status     bool         `json:"status"`
	Mode       string       `json:"mode,omitempty"`
	Confidence *float64     `json:"confidence,omitempty"`
	SearchUsed bool         `json:"search_used"`
	Cached     bool         `json:"cached,omitempty"`
	Sources    []search.Hit `json:"sources,omitempty"`
	Result     string       `json:"result"`

	outcome string
}
