package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the promemo API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	Export    ExportConfig    `yaml:"export"`
	Assistant AssistantConfig `yaml:"assistant"`
	Jobs      JobsConfig      `yaml:"jobs"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	TokenTTLMin int    `yaml:"token_ttl_min"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	DefaultTTL int  `yaml:"default_ttl_sec"`
}

// SearchConfig holds search limit settings.
type SearchConfig struct {
	DefaultLimit     int `yaml:"default_limit"`
	MaxLimit         int `yaml:"max_limit"`
	SuggestionsLimit int `yaml:"suggestions_limit"`
}

// ExportConfig holds export/import settings.
type ExportConfig struct {
	MaxImportRecords int `yaml:"max_import_records"`
}

// AssistantConfig holds AI assistant settings.
type AssistantConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// JobsConfig holds background job intervals.
type JobsConfig struct {
	NotificationCleanupMin int `yaml:"notification_cleanup_min"`
	NotificationMaxAgeDays int `yaml:"notification_max_age_days"`
	CacheSweepMin          int `yaml:"cache_sweep_min"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "promemo:"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Auth.TokenTTLMin <= 0 {
		c.Auth.TokenTTLMin = 24 * 60
	}
	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = 60
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 20
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.SuggestionsLimit <= 0 {
		c.Search.SuggestionsLimit = 10
	}
	if c.Export.MaxImportRecords <= 0 {
		c.Export.MaxImportRecords = 1000
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = "gpt-4o-mini"
	}
	if c.Jobs.NotificationCleanupMin <= 0 {
		c.Jobs.NotificationCleanupMin = 60
	}
	if c.Jobs.NotificationMaxAgeDays <= 0 {
		c.Jobs.NotificationMaxAgeDays = 30
	}
	if c.Jobs.CacheSweepMin <= 0 {
		c.Jobs.CacheSweepMin = 24 * 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
