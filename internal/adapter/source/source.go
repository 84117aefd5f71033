package source

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/httpclient"
)

// SourceConfig contains the configuration needed to create an image source
type SourceConfig struct {
	BaseURL string
	Key     string
}

// NewClient creates the PixaBay client over httpc. The key itself travels
// in httpc's interceptors; it is only checked for presence here.
func NewClient(cfg *SourceConfig, httpc *httpclient.Client, logger *slog.Logger) (*pixabay.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, domain.ErrNotConfigured
	}
	if httpc == nil {
		return nil, fmt.Errorf("http client is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pixabay.DefaultBaseURL
	}
	return pixabay.NewClient(baseURL, httpc, logger)
}

// NewClientFromConfig creates the image source from the application config.
// A missing key yields domain.ErrNotConfigured.
func NewClientFromConfig(cfg *adapter.Config, httpc *httpclient.Client, logger *slog.Logger) (*pixabay.Client, error) {
	return NewClient(&SourceConfig{
		BaseURL: cfg.API.BaseURL,
		Key:     cfg.API.Key,
	}, httpc, logger)
}

// AsImageSource converts a possibly nil client to the interface without
// producing a typed nil
func AsImageSource(c *pixabay.Client) domain.ImageSource {
	if c == nil {
		return nil
	}
	return c
}

// IsNotConfigured reports whether err means no API key is set
func IsNotConfigured(err error) bool {
	return errors.Is(err, domain.ErrNotConfigured)
}
