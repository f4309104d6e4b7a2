// pkg/registry/schema.go
package registry

type EndpointRegistry struct {
	Engine      string     `json:"engine"`
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Endpoints   []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID          string                 `json:"id"`
	Method      string                 `json:"method"`
	Path        string                 `json:"path"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"` // api | debug | ops
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
	ErrorCodes  []string               `json:"errorCodes"`
	Tags        []string               `json:"tags"`
}

const (
	CategoryAPI   = "api"
	CategoryDebug = "debug"
	CategoryOps   = "ops"
)

const (
	IDChat        = "chat"
	IDImage       = "image"
	IDDebugChat   = "debug-chat"
	IDDebugImage  = "debug-image"
	IDDebugSearch = "debug-search"
	IDHealth      = "health"
	IDReady       = "ready"
	IDMetrics     = "metrics"
)
