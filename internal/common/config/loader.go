// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml and
// applies environment overrides on top.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment file is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets and addresses from well-known variables
// when the files left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.Neoxr.APIKey == "" {
		cfg.APIs.Neoxr.APIKey = os.Getenv("NEOXR_KEY")
	}
	if cfg.APIs.OpenAI.APIKey == "" {
		cfg.APIs.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = os.Getenv("REDIS_ADDRESS")
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ai-mood-gateway"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}

	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 20
	}
	if cfg.RateLimit.WindowMs == 0 {
		cfg.RateLimit.WindowMs = 60000
	}
	if cfg.RateLimit.EvictionSpec == "" {
		cfg.RateLimit.EvictionSpec = "@every 5m"
	}

	if cfg.Cache.ExpireMs == 0 {
		cfg.Cache.ExpireMs = 24 * 60 * 60 * 1000
	}
	if cfg.Cache.SweepSpec == "" {
		cfg.Cache.SweepSpec = "@every 30m"
	}

	if cfg.PersistentCache.Backend == "" {
		cfg.PersistentCache.Backend = "none"
	}
	if cfg.PersistentCache.TTLMs == 0 {
		cfg.PersistentCache.TTLMs = 24 * 60 * 60 * 1000
	}
	if cfg.PersistentCache.KeyPrefix == "" {
		cfg.PersistentCache.KeyPrefix = "ai:answer:"
	}
	if cfg.PersistentCache.Table == "" {
		cfg.PersistentCache.Table = "answer_cache"
	}
	if cfg.PersistentCache.TimeoutMs == 0 {
		cfg.PersistentCache.TimeoutMs = 3000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.APIs.Neoxr.BaseURL == "" {
		cfg.APIs.Neoxr.BaseURL = "https://api.neoxr.eu/api"
	}
	if cfg.APIs.Neoxr.Session == "" {
		cfg.APIs.Neoxr.Session = "1727468410446638"
	}
	if cfg.APIs.Neoxr.Timeout == 0 {
		cfg.APIs.Neoxr.Timeout = 12000
	}
	if cfg.APIs.OpenAI.Model == "" {
		cfg.APIs.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.APIs.OpenAI.Timeout == 0 {
		cfg.APIs.OpenAI.Timeout = 15000
	}

	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "neoxr"
	}

	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "neoxr"
	}
	if cfg.Search.Index == "" {
		cfg.Search.Index = "documents"
	}
	if cfg.Search.RecencySuffix == "" {
		cfg.Search.RecencySuffix = "latest %d update official"
	}
	if cfg.Search.MaxEvidence == 0 {
		cfg.Search.MaxEvidence = 5
	}
	if cfg.Search.TimeoutMs == 0 {
		cfg.Search.TimeoutMs = 12000
	}

	if cfg.Assistant.Name == "" {
		cfg.Assistant.Name = "Mood AI"
	}
	if cfg.Assistant.Developer == "" {
		cfg.Assistant.Developer = "Tim Mood AI"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Model.Provider {
	case "neoxr":
		if cfg.APIs.Neoxr.APIKey == "" {
			return fmt.Errorf("apis.neoxr.api_key (or NEOXR_KEY) is required for model provider neoxr")
		}
	case "openai":
		if cfg.APIs.OpenAI.APIKey == "" {
			return fmt.Errorf("apis.openai.api_key (or OPENAI_API_KEY) is required for model provider openai")
		}
	default:
		return fmt.Errorf("model.provider %q is not supported", cfg.Model.Provider)
	}

	switch cfg.Search.Provider {
	case "neoxr":
		if cfg.APIs.Neoxr.APIKey == "" {
			return fmt.Errorf("apis.neoxr.api_key is required for search provider neoxr")
		}
	case "elasticsearch":
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for search provider elasticsearch")
		}
	default:
		return fmt.Errorf("search.provider %q is not supported", cfg.Search.Provider)
	}

	switch cfg.PersistentCache.Backend {
	case "none":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for persistent_cache.backend redis")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.host and database are required for persistent_cache.backend postgres")
		}
	default:
		return fmt.Errorf("persistent_cache.backend %q is not supported", cfg.PersistentCache.Backend)
	}

	if cfg.RateLimit.Limit < 0 {
		return fmt.Errorf("rate_limit.limit must not be negative")
	}
	if cfg.Search.MaxEvidence < 0 {
		return fmt.Errorf("search.max_evidence must not be negative")
	}

	return nil
}
