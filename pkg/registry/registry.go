// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func LoadRegistry(path string) (*EndpointRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg EndpointRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Save writes reg as indented JSON, creating parent directories.
func (r *EndpointRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *EndpointRegistry) Find(id string) (*Endpoint, bool) {
	for i := range r.Endpoints {
		if r.Endpoints[i].ID == id {
			return &r.Endpoints[i], true
		}
	}
	return nil, false
}

// Paths returns the paths of every endpoint in category, in registry order.
func (r *EndpointRegistry) Paths(category string) []string {
	var out []string
	for _, e := range r.Endpoints {
		if e.Category == category {
			out = append(out, e.Path)
		}
	}
	return out
}

// Validate checks ids are unique and required fields are set.
func (r *EndpointRegistry) Validate() error {
	if len(r.Endpoints) == 0 {
		return fmt.Errorf("registry contains no endpoints")
	}

	ids := make(map[string]bool)
	routes := make(map[string]bool)
	for _, e := range r.Endpoints {
		if e.ID == "" {
			return fmt.Errorf("endpoint missing required field: ID")
		}
		if ids[e.ID] {
			return fmt.Errorf("duplicate endpoint ID: %s", e.ID)
		}
		ids[e.ID] = true

		if e.Method == "" || e.Path == "" {
			return fmt.Errorf("endpoint %s missing method or path", e.ID)
		}
		route := e.Method + " " + e.Path
		if routes[route] {
			return fmt.Errorf("duplicate route: %s", route)
		}
		routes[route] = true

		switch e.Category {
		case CategoryAPI, CategoryDebug, CategoryOps:
		default:
			return fmt.Errorf("endpoint %s has unknown category %q", e.ID, e.Category)
		}
	}

	for _, required := range []string{IDChat, IDImage} {
		if !ids[required] {
			return fmt.Errorf("registry is missing endpoint %s", required)
		}
	}
	return nil
}

func textBodySchema(field string, maxLength int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			field: map[string]interface{}{
				"type":      []string{"string", "null"},
				"maxLength": maxLength,
			},
		},
	}
}

// DefaultRegistry describes the endpoints the gateway serves.
func DefaultRegistry() *EndpointRegistry {
	return &EndpointRegistry{
		Engine:      "AI Mood Smart Realtime",
		Version:     "1.0.0",
		LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Endpoints: []Endpoint{
			{
				ID:          IDChat,
				Method:      "POST",
				Path:        "/api/chat",
				Description: "Answer a chat message with mood-aware tone and web evidence",
				Category:    CategoryAPI,
				InputSchema: textBodySchema("message", 4000),
				ErrorCodes:  []string{"INPUT_EMPTY", "INPUT_INVALID", "RATE_LIMITED", "UPSTREAM_MODEL_FAILED"},
				Tags:        []string{"chat", "search"},
			},
			{
				ID:          IDImage,
				Method:      "POST",
				Path:        "/api/image",
				Description: "Generate an image from a prompt",
				Category:    CategoryAPI,
				InputSchema: textBodySchema("prompt", 1000),
				ErrorCodes:  []string{"INPUT_EMPTY", "INPUT_INVALID", "RATE_LIMITED", "UPSTREAM_IMAGE_FAILED"},
				Tags:        []string{"image"},
			},
			{ID: IDDebugChat, Method: "GET", Path: "/debug-chat", Description: "Raw upstream chat response", Category: CategoryDebug, ErrorCodes: []string{}, Tags: []string{"debug"}},
			{ID: IDDebugImage, Method: "GET", Path: "/debug-image", Description: "Raw upstream image response", Category: CategoryDebug, ErrorCodes: []string{}, Tags: []string{"debug"}},
			{ID: IDDebugSearch, Method: "GET", Path: "/debug-search", Description: "Raw upstream search response", Category: CategoryDebug, ErrorCodes: []string{}, Tags: []string{"debug"}},
			{ID: IDHealth, Method: "GET", Path: "/health", Description: "Liveness", Category: CategoryOps, ErrorCodes: []string{}, Tags: []string{"ops"}},
			{ID: IDReady, Method: "GET", Path: "/ready", Description: "Readiness including persistent cache", Category: CategoryOps, ErrorCodes: []string{}, Tags: []string{"ops"}},
			{ID: IDMetrics, Method: "GET", Path: "/metrics", Description: "Prometheus metrics", Category: CategoryOps, ErrorCodes: []string{}, Tags: []string{"ops"}},
		},
	}
}
