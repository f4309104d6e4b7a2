package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("NEOXR_KEY", "secret-key")
	path := writeConfig(t, `
app:
  name: gateway-test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gateway-test", cfg.App.Name)
	assert.Equal(t, "secret-key", cfg.APIs.Neoxr.APIKey)
	assert.Equal(t, 20, cfg.RateLimit.Limit)
	assert.Equal(t, 60000, cfg.RateLimit.WindowMs)
	assert.Equal(t, 24*time.Hour, GetDuration(cfg.Cache.ExpireMs))
	assert.Equal(t, "@every 30m", cfg.Cache.SweepSpec)
	assert.Equal(t, "none", cfg.PersistentCache.Backend)
	assert.Equal(t, 5, cfg.Search.MaxEvidence)
	assert.Equal(t, "latest %d update official", cfg.Search.RecencySuffix)
	assert.Equal(t, 12000, cfg.APIs.Neoxr.Timeout)
	assert.Equal(t, 12000, cfg.Search.TimeoutMs)
	assert.Equal(t, ":8000", cfg.Server.Addr())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_HOST", "cache.internal:6379")
	path := writeConfig(t, `
apis:
  neoxr:
    api_key: abc
persistent_cache:
  backend: redis
database:
  redis:
    address: ${TEST_REDIS_HOST}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	path := writeConfig(t, `
apis:
  neoxr:
    api_key: abc
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.APIs.Neoxr.APIKey = "k"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing neoxr key",
			mutate:  func(cfg *Config) { cfg.APIs.Neoxr.APIKey = "" },
			wantErr: "apis.neoxr.api_key",
		},
		{
			name: "openai without key",
			mutate: func(cfg *Config) {
				cfg.Model.Provider = "openai"
			},
			wantErr: "apis.openai.api_key",
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.PersistentCache.Backend = "memcached" },
			wantErr: "not supported",
		},
		{
			name:    "redis backend without address",
			mutate:  func(cfg *Config) { cfg.PersistentCache.Backend = "redis" },
			wantErr: "database.redis.address",
		},
		{
			name:    "elasticsearch search without url",
			mutate:  func(cfg *Config) { cfg.Search.Provider = "elasticsearch" },
			wantErr: "database.elasticsearch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
