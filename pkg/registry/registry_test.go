package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_IsValid(t *testing.T) {
	reg := DefaultRegistry()
	require.NoError(t, reg.Validate())

	chat, ok := reg.Find(IDChat)
	require.True(t, ok)
	assert.Equal(t, "/api/chat", chat.Path)
	assert.NotNil(t, chat.InputSchema)

	assert.Equal(t, []string{"/debug-chat", "/debug-image", "/debug-search"}, reg.Paths(CategoryDebug))
	assert.Equal(t, []string{"/api/chat", "/api/image"}, reg.Paths(CategoryAPI))
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := DefaultRegistry()
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Engine, loaded.Engine)
	assert.Len(t, loaded.Endpoints, len(reg.Endpoints))
	require.NoError(t, loaded.Validate())
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *EndpointRegistry)
		wantErr string
	}{
		{"empty", func(r *EndpointRegistry) { r.Endpoints = nil }, "no endpoints"},
		{"duplicate id", func(r *EndpointRegistry) { r.Endpoints[1].ID = IDChat }, "duplicate endpoint ID"},
		{"duplicate route", func(r *EndpointRegistry) { r.Endpoints[2].Path = "/debug-image" }, "duplicate route"},
		{"bad category", func(r *EndpointRegistry) { r.Endpoints[0].Category = "misc" }, "unknown category"},
		{"missing path", func(r *EndpointRegistry) { r.Endpoints[0].Path = "" }, "missing method or path"},
		{"missing image", func(r *EndpointRegistry) { r.Endpoints = r.Endpoints[:1] }, "missing endpoint image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := DefaultRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
