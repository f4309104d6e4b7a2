// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App             AppConfig             `mapstructure:"app"`
	Server          ServerConfig          `mapstructure:"server"`
	RateLimit       RateLimitConfig       `mapstructure:"rate_limit"`
	Cache           CacheConfig           `mapstructure:"cache"`
	PersistentCache PersistentCacheConfig `mapstructure:"persistent_cache"`
	Database        DatabaseConfig        `mapstructure:"database"`
	APIs            APIsConfig            `mapstructure:"apis"`
	Model           ModelConfig           `mapstructure:"model"`
	Search          SearchConfig          `mapstructure:"search"`
	Assistant       AssistantConfig       `mapstructure:"assistant"`
	Tracing         TracingConfig         `mapstructure:"tracing"`
	Logging         LoggingConfig         `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port             int    `mapstructure:"port"`
	ReadTimeout      int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout     int    `mapstructure:"write_timeout"` // milliseconds
	ErrorStatusCodes bool   `mapstructure:"error_status_codes"`
	RegistryPath     string `mapstructure:"registry_path"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// RateLimitConfig controls the per-client sliding window.
type RateLimitConfig struct {
	Limit        int    `mapstructure:"limit"`
	WindowMs     int    `mapstructure:"window_ms"`
	EvictionSpec string `mapstructure:"eviction_spec"` // cron spec for idle client eviction
}

// CacheConfig controls the in-process search result cache.
type CacheConfig struct {
	ExpireMs      int    `mapstructure:"expire_ms"`
	SweepSpec     string `mapstructure:"sweep_spec"` // cron spec, e.g. "@every 30m"
	NormalizeKeys bool   `mapstructure:"normalize_keys"`
}

// PersistentCacheConfig selects the durable answer cache backend.
type PersistentCacheConfig struct {
	Backend   string `mapstructure:"backend"` // redis | postgres | none
	TTLMs     int    `mapstructure:"ttl_ms"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Table     string `mapstructure:"table"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Neoxr struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Session string `mapstructure:"session"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"neoxr"`

	OpenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"openai"`
}

// ModelConfig selects the upstream chat model provider.
type ModelConfig struct {
	Provider string `mapstructure:"provider"` // neoxr | openai
}

// SearchConfig controls evidence gathering.
type SearchConfig struct {
	Provider       string   `mapstructure:"provider"` // neoxr | elasticsearch
	Index          string   `mapstructure:"index"`
	TrustedDomains []string `mapstructure:"trusted_domains"`
	RecencySuffix  string   `mapstructure:"recency_suffix"` // fmt pattern with one %d for the year
	MaxEvidence    int      `mapstructure:"max_evidence"`
	TimeoutMs      int      `mapstructure:"timeout_ms"` // per index search call
}

// AssistantConfig holds the identity disclosed to users.
type AssistantConfig struct {
	Name      string `mapstructure:"name"`
	Developer string `mapstructure:"developer"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
