package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CacheDriver identifies the cache store backend
type CacheDriver string

const (
	CacheDriverSQLite CacheDriver = "sqlite"
	CacheDriverBolt   CacheDriver = "bolt"
)

const (
	appName    = "pixa"
	envPrefix  = "PIXA"
	configName = "config"
	configType = "yaml"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`

	file string // config file that was read, if any
}

// APIConfig holds PixaBay API configuration
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Key       string `mapstructure:"key"`
	ImageType string `mapstructure:"image_type"` // all, photo, illustration, vector
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	RateLimit      int           `mapstructure:"rate_limit"` // requests per minute, 0 disables
	LogBodies      bool          `mapstructure:"log_bodies"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Driver       CacheDriver   `mapstructure:"driver"`
	Path         string        `mapstructure:"path"` // empty for in-memory
	MemoTTL      time.Duration `mapstructure:"memo_ttl"`
	MemoCapacity int           `mapstructure:"memo_capacity"`
}

// SearchConfig holds search request defaults
type SearchConfig struct {
	PageSize   int    `mapstructure:"page_size"`
	SafeSearch bool   `mapstructure:"safe_search"`
	Order      string `mapstructure:"order"` // popular or latest
}

// UIConfig holds UI configuration
type UIConfig struct {
	Opener        string   `mapstructure:"opener"` // empty for system default
	OpenerArgs    []string `mapstructure:"opener_args"`
	ShowInspector bool     `mapstructure:"show_inspector"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://pixabay.com/",
			ImageType: "photo",
		},
		HTTP: HTTPConfig{
			ConnectTimeout: 30 * time.Second,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			UserAgent:      "pixa/1.0",
			RateLimit:      100,
		},
		Cache: CacheConfig{
			Driver:       CacheDriverSQLite,
			Path:         filepath.Join(defaultDataPath(), "images.db"),
			MemoTTL:      10 * time.Minute,
			MemoCapacity: 500,
		},
		Search: SearchConfig{
			PageSize:   20,
			SafeSearch: true,
			Order:      "popular",
		},
		UI: UIConfig{
			ShowInspector: true,
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "pixa.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the per-user data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// DefaultConfigFile is where SaveAPIKey writes when no file was loaded
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), configName+"."+configType)
}

// newViper builds a viper instance with defaults and env binding.
// Defaults are registered key by key so PIXA_* variables reach every field.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.image_type", d.API.ImageType)

	v.SetDefault("http.connect_timeout", d.HTTP.ConnectTimeout)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.rate_limit", d.HTTP.RateLimit)
	v.SetDefault("http.log_bodies", d.HTTP.LogBodies)

	v.SetDefault("cache.driver", string(d.Cache.Driver))
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.memo_ttl", d.Cache.MemoTTL)
	v.SetDefault("cache.memo_capacity", d.Cache.MemoCapacity)

	v.SetDefault("search.page_size", d.Search.PageSize)
	v.SetDefault("search.safe_search", d.Search.SafeSearch)
	v.SetDefault("search.order", d.Search.Order)

	v.SetDefault("ui.opener", d.UI.Opener)
	v.SetDefault("ui.opener_args", d.UI.OpenerArgs)
	v.SetDefault("ui.show_inspector", d.UI.ShowInspector)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)

	// Environment variable overrides (PIXA_API_KEY, PIXA_CACHE_DRIVER, ...)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from file and environment. An empty
// path searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// Config file not found is OK, use defaults
		case path != "" && errors.Is(err, os.ErrNotExist):
			// Explicit file that doesn't exist yet is created on save
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.file = v.ConfigFileUsed()
	if cfg.file == "" {
		cfg.file = path
	}
	cfg.Cache.Path = expandHome(cfg.Cache.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	return cfg, nil
}

// File returns the config file this configuration was loaded from, or
// the file it will be saved to
func (c *Config) File() string {
	if c.file != "" {
		return c.file
	}
	return DefaultConfigFile()
}

// Validate checks option ranges
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Driver {
	case CacheDriverSQLite, CacheDriverBolt:
	default:
		errs = append(errs, fmt.Errorf("cache.driver: unknown driver %q (want sqlite or bolt)", c.Cache.Driver))
	}

	if c.Search.PageSize < 3 || c.Search.PageSize > 200 {
		errs = append(errs, fmt.Errorf("search.page_size: %d is outside 3..200", c.Search.PageSize))
	}

	switch c.Search.Order {
	case "", "popular", "latest":
	default:
		errs = append(errs, fmt.Errorf("search.order: unknown order %q", c.Search.Order))
	}

	switch c.API.ImageType {
	case "", "all", "photo", "illustration", "vector":
	default:
		errs = append(errs, fmt.Errorf("api.image_type: unknown type %q", c.API.ImageType))
	}

	for name, d := range map[string]time.Duration{
		"http.connect_timeout": c.HTTP.ConnectTimeout,
		"http.read_timeout":    c.HTTP.ReadTimeout,
		"http.write_timeout":   c.HTTP.WriteTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive", name))
		}
	}

	if c.HTTP.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("http.rate_limit: must not be negative"))
	}
	if c.Cache.MemoCapacity < 0 {
		errs = append(errs, fmt.Errorf("cache.memo_capacity: must not be negative"))
	}

	return errors.Join(errs...)
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.API.Key) != ""
}

// SaveAPIKey writes key into the config file, preserving other settings
func SaveAPIKey(file, key string) error {
	if file == "" {
		file = DefaultConfigFile()
	}

	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	v.Set("api.key", key)

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
