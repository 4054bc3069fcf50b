package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "embedded", cfg.RefData.Source)
	assert.Equal(t, 0.60, cfg.Matching.TitleThreshold)
	assert.Equal(t, 4096, cfg.Matching.MemoCacheSize)
	assert.Nil(t, cfg.Compare.Weights)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
cache:
  driver: redis
  ttl: 10m
  redis:
    addr: redis.internal:6379
matching:
  title_threshold: 0.70
compare:
  weights:
    name: 0.5
    email: 0.5
observability:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis.internal:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 0.70, cfg.Matching.TitleThreshold)
	assert.Equal(t, map[string]float64{"name": 0.5, "email": 0.5}, cfg.Compare.Weights)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)

	// Values not present in the file keep their defaults.
	assert.Equal(t, "embedded", cfg.RefData.Source)
	assert.Equal(t, 4096, cfg.Matching.MemoCacheSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad cache driver",
			mutate:  func(c *Config) { c.Cache.Driver = "memcached" },
			wantErr: "invalid cache driver",
		},
		{
			name:    "bad refdata source",
			mutate:  func(c *Config) { c.RefData.Source = "postgres" },
			wantErr: "invalid refdata source",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.RefData.Source = "sqlite" },
			wantErr: "no path configured",
		},
		{
			name:    "title threshold out of range",
			mutate:  func(c *Config) { c.Matching.TitleThreshold = 1.5 },
			wantErr: "title_threshold",
		},
		{
			name:    "department threshold out of range",
			mutate:  func(c *Config) { c.Matching.DepartmentThreshold = -0.1 },
			wantErr: "department_threshold",
		},
		{
			name:    "negative memo size",
			mutate:  func(c *Config) { c.Matching.MemoCacheSize = -1 },
			wantErr: "memo_cache_size",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Compare.Weights = map[string]float64{"name": -1} },
			wantErr: "invalid weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REDIS_URL", "redis://cache.internal:6380")
	t.Setenv("REFDATA_SQLITE_PATH", "/data/refdata.db")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, "sqlite", cfg.RefData.Source)
	assert.Equal(t, "/data/refdata.db", cfg.RefData.SQLite.Path)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}
