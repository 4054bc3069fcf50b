// Package config provides unified configuration loading for the contact engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the contact engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Cache         CacheConfig         `yaml:"cache"`
	RefData       RefDataConfig       `yaml:"refdata"`
	Matching      MatchingConfig      `yaml:"matching"`
	Compare       CompareConfig       `yaml:"compare"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// CacheConfig holds match-result cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RefDataConfig holds reference-data source settings.
type RefDataConfig struct {
	Source string       `yaml:"source"` // embedded or sqlite
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// MatchingConfig holds tiered-matcher settings.
type MatchingConfig struct {
	TitleThreshold      float64 `yaml:"title_threshold"`
	DepartmentThreshold float64 `yaml:"department_threshold"`
	MemoCacheSize       int     `yaml:"memo_cache_size"`
}

// CompareConfig holds record-comparator settings.
type CompareConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		RefData: RefDataConfig{
			Source: "embedded",
			SQLite: SQLiteConfig{
				MaxOpenConns: 1,
			},
		},
		Matching: MatchingConfig{
			TitleThreshold:      0.60,
			DepartmentThreshold: 0.60,
			MemoCacheSize:       4096,
		},
		Compare: CompareConfig{
			Weights: nil, // nil means the comparator's built-in defaults
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "contact-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.RefData.Source != "embedded" && c.RefData.Source != "sqlite" {
		return fmt.Errorf("invalid refdata source: %s", c.RefData.Source)
	}

	if c.RefData.Source == "sqlite" && c.RefData.SQLite.Path == "" {
		return fmt.Errorf("refdata source is sqlite but no path configured")
	}

	if c.Matching.TitleThreshold < 0 || c.Matching.TitleThreshold > 1 {
		return fmt.Errorf("title_threshold must be between 0.0 and 1.0, got %g", c.Matching.TitleThreshold)
	}

	if c.Matching.DepartmentThreshold < 0 || c.Matching.DepartmentThreshold > 1 {
		return fmt.Errorf("department_threshold must be between 0.0 and 1.0, got %g", c.Matching.DepartmentThreshold)
	}

	if c.Matching.MemoCacheSize < 0 {
		return fmt.Errorf("memo_cache_size cannot be negative")
	}

	for field, w := range c.Compare.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight for field %q: %g", field, w)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("REFDATA_SQLITE_PATH"); v != "" {
		cfg.RefData.Source = "sqlite"
		cfg.RefData.SQLite.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
