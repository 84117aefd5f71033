// Package app builds the long-lived objects a pixa process needs and
// releases them on shutdown.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/adapter/source"
	"github.com/mmcdole/pixa/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/httpclient"
	"github.com/mmcdole/pixa/internal/service"
	"github.com/mmcdole/pixa/internal/store"
)

// Container holds one instance of each process-wide dependency.
// Construct it once at startup and pass its fields down explicitly.
type Container struct {
	Config   *adapter.Config
	Logger   *slog.Logger
	HTTP     *httpclient.Client
	Source   *pixabay.Client // nil when no API key is configured
	Store    domain.ImageStore
	Repo     *service.Repository
	Launcher *adapter.Launcher
}

// New wires the container from cfg
func New(cfg *adapter.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger}

	c.HTTP = NewHTTPClient(cfg, logger)

	src, err := source.NewClientFromConfig(cfg, c.HTTP, logger)
	switch {
	case source.IsNotConfigured(err):
		logger.Warn("no API key configured, search limited to cache")
	case err != nil:
		c.HTTP.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	default:
		c.Source = src
	}

	st, err := store.Open(store.Config{
		Driver: store.Driver(cfg.Cache.Driver),
		Path:   cfg.Cache.Path,
	}, logger)
	if err != nil {
		c.HTTP.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	c.Store = st

	c.Repo = service.NewRepository(source.AsImageSource(c.Source), st, service.Options{
		PageSize:     cfg.Search.PageSize,
		SafeSearch:   cfg.Search.SafeSearch,
		Order:        cfg.Search.Order,
		MemoTTL:      cfg.Cache.MemoTTL,
		MemoCapacity: cfg.Cache.MemoCapacity,
	}, logger)

	c.Launcher = adapter.NewLauncher(cfg.UI.Opener, cfg.UI.OpenerArgs, logger)

	logger.Info("container ready", "cache", cfg.Cache.Driver, "configured", cfg.IsConfigured())
	return c, nil
}

// NewHTTPClient builds the API client's HTTP stack: fixed timeouts plus the
// auth, rate limit and logging interceptors, in that order
func NewHTTPClient(cfg *adapter.Config, logger *slog.Logger) *httpclient.Client {
	return httpclient.New(&httpclient.Config{
		ConnectTimeout: cfg.HTTP.ConnectTimeout,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		UserAgent:      cfg.HTTP.UserAgent,
	},
		httpclient.QueryParams(pixabay.AuthParams(cfg.API.Key, domain.ImageType(cfg.API.ImageType))),
		httpclient.RateLimit(httpclient.PerWindow(cfg.HTTP.RateLimit, time.Minute)),
		httpclient.Logging(logger, cfg.HTTP.LogBodies),
	)
}

// Close releases the store and idle connections
func (c *Container) Close() error {
	var errs []error
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if c.HTTP != nil {
		c.HTTP.Close()
	}
	c.Logger.Info("container closed")
	return errors.Join(errs...)
}
