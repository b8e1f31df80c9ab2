// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dsn := cfg.Storage.DSN
//	matcherCfg, err := cfg.MatcherConfig()
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Storage       StorageConfig       `yaml:"storage"`
	Embeddings    EmbeddingsConfig    `yaml:"embeddings"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds the calibration of the confidence engine.
// Zero values fall back to the calibrated defaults.
type MatchingConfig struct {
	Weights           *matcher.Weights    `yaml:"weights"`
	Thresholds        *matcher.Thresholds `yaml:"thresholds"`
	CrossCurrencyGate bool                `yaml:"cross_currency_gate"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `yaml:"dsn"`
}

// EmbeddingsConfig holds the similarity provider configuration
type EmbeddingsConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "lexical"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// CacheEntries bounds the in-memory vector cache; 0 uses the default.
	CacheEntries int `yaml:"cache_entries"`
}

// ReconcileConfig holds reconcile run settings
type ReconcileConfig struct {
	Workers int `yaml:"workers"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${GEMINI_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Matching: MatchingConfig{
			CrossCurrencyGate: getEnvBool("RECONCILE_CROSS_CURRENCY_GATE", false),
		},
		Storage: StorageConfig{
			Driver: getEnv("RECONCILE_DB_DRIVER", "sqlite3"),
			DSN:    getEnv("RECONCILE_DB_DSN", "reconcile.db"),
		},
		Embeddings: EmbeddingsConfig{
			Provider: getEnv("RECONCILE_EMBEDDINGS_PROVIDER", ""),
			APIKey:   os.Getenv("GEMINI_API_KEY"),
			Model:    getEnv("GEMINI_EMBEDDING_MODEL", ""),
		},
		Reconcile: ReconcileConfig{
			Workers: getEnvInt("RECONCILE_WORKERS", 0),
		},
		API: APIConfig{
			Port:           getEnvInt("PORT", 0),
			AllowedOrigins: splitList(os.Getenv("RECONCILE_ALLOWED_ORIGINS")),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}

	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite3"
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = "reconcile.db"
	}
	if c.Embeddings.Provider == "" {
		if c.Embeddings.APIKey != "" {
			c.Embeddings.Provider = "gemini"
		} else {
			c.Embeddings.Provider = "lexical"
		}
	}
	if c.Reconcile.Workers <= 0 {
		c.Reconcile.Workers = 8
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// MatcherConfig builds and validates the matcher configuration.
func (c *Config) MatcherConfig() (matcher.Config, error) {
	mc := matcher.DefaultConfig()
	if c.Matching.Weights != nil {
		mc.Weights = *c.Matching.Weights
	}
	if c.Matching.Thresholds != nil {
		mc.Thresholds = *c.Matching.Thresholds
	}
	mc.CrossCurrencyGate = c.Matching.CrossCurrencyGate

	if err := mc.Validate(); err != nil {
		return matcher.Config{}, fmt.Errorf("invalid matching config: %w", err)
	}
	return mc, nil
}

// GetAPIKey retrieves an API key from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.Embeddings.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	if configValue != "" {
		return configValue
	}

	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.Atoi(val); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if result, err := strconv.ParseBool(val); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
