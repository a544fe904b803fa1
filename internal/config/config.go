// Package config loads and validates service configuration from config files
// and environment variables using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Bundles BundlesConfig `mapstructure:"bundles"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Summary SummaryConfig `mapstructure:"summary"`
	Review  ReviewConfig  `mapstructure:"review"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
}

// BundlesConfig holds bundle source settings.
type BundlesConfig struct {
	Dir       string `mapstructure:"dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

// CacheConfig holds optional Redis cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SummaryConfig controls narrative sizing.
type SummaryConfig struct {
	TopDiagnoses   int `mapstructure:"top_diagnoses"`
	TopLabFindings int `mapstructure:"top_lab_findings"`
}

// ReviewConfig holds the summary review store settings.
type ReviewConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager loads and serves the service configuration.
type Manager struct {
	config *Config
}

// NewManager creates a configuration manager, loading from config files and
// environment variables.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/patient-summary-mcp-server/")

	viper.SetEnvPrefix("PATIENT_SUMMARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// The config file is optional; defaults and environment variables cover
	// the full surface.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("server.rate_limit", 50)
	viper.SetDefault("server.rate_burst", 100)

	// Bundle source defaults
	viper.SetDefault("bundles.dir", "./data/bundles")
	viper.SetDefault("bundles.cache_size", 32)

	// Cache defaults
	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.ttl", "1h")

	// Narrative sizing defaults
	viper.SetDefault("summary.top_diagnoses", 3)
	viper.SetDefault("summary.top_lab_findings", 4)

	// Review store defaults
	viper.SetDefault("review.database_path", "./data/reviews.db")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetServerConfig returns the HTTP server configuration.
func (m *Manager) GetServerConfig() *ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Bundles.Dir == "" {
		return fmt.Errorf("bundle directory is required")
	}
	if config.Bundles.CacheSize < 0 {
		return fmt.Errorf("invalid bundle cache size: %d", config.Bundles.CacheSize)
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when the cache is enabled")
	}

	if config.Summary.TopDiagnoses <= 0 {
		return fmt.Errorf("invalid top diagnoses count: %d", config.Summary.TopDiagnoses)
	}
	if config.Summary.TopLabFindings <= 0 {
		return fmt.Errorf("invalid top lab findings count: %d", config.Summary.TopLabFindings)
	}

	if config.Review.DatabasePath == "" {
		return fmt.Errorf("review database path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
