package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://pixabay.com/", cfg.API.BaseURL)
	assert.Equal(t, "photo", cfg.API.ImageType)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, CacheDriverSQLite, cfg.Cache.Driver)
	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, path, cfg.File())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  key: from-file
http:
  read_timeout: 5s
cache:
  driver: bolt
  path: /tmp/pixa.bolt
  memo_ttl: 2m
search:
  page_size: 50
  order: latest
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("PIXA_API_KEY", "from-env")
	t.Setenv("PIXA_SEARCH_SAFE_SEARCH", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.API.Key, "env overrides file")
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, CacheDriverBolt, cfg.Cache.Driver)
	assert.Equal(t, "/tmp/pixa.bolt", cfg.Cache.Path)
	assert.Equal(t, 2*time.Minute, cfg.Cache.MemoTTL)
	assert.Equal(t, 50, cfg.Search.PageSize)
	assert.Equal(t, "latest", cfg.Search.Order)
	assert.False(t, cfg.Search.SafeSearch)
	assert.True(t, cfg.IsConfigured())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bolt driver", func(c *Config) { c.Cache.Driver = CacheDriverBolt }, true},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "redis" }, false},
		{"page size too small", func(c *Config) { c.Search.PageSize = 2 }, false},
		{"page size too large", func(c *Config) { c.Search.PageSize = 201 }, false},
		{"zero timeout", func(c *Config) { c.HTTP.ReadTimeout = 0 }, false},
		{"bad order", func(c *Config) { c.Search.Order = "random" }, false},
		{"bad image type", func(c *Config) { c.API.ImageType = "gif" }, false},
		{"negative rate", func(c *Config) { c.HTTP.RateLimit = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("search:\n  page_size: 40\n"), 0o644))

	require.NoError(t, SaveAPIKey(path, "new-key"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "new-key", cfg.API.Key)
	assert.Equal(t, 40, cfg.Search.PageSize, "other settings preserved")
}

func TestSaveAPIKey_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "config.yaml")
	require.NoError(t, SaveAPIKey(path, "k"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.API.Key)
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pixa.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug", MaxSizeMB: 1})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hello", "k", "v")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "ERROR", parseLogLevel("ERROR").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}
