// Package httpclient provides the long-lived HTTP client used for API calls.
//
// Every connection carries fixed connect, read and write timeouts, and every
// request passes through an ordered chain of interceptors.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is applied to connect, read and write when unset
	DefaultTimeout = 30 * time.Second

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = DefaultTimeout
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultDialKeepAlive       = 30 * time.Second

	defaultUserAgent = "pixa/1.0"
)

// Interceptor wraps a RoundTripper with cross-cutting request behavior
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Config holds configuration for creating an HTTP client.
type Config struct {
	// ConnectTimeout bounds dialing a new connection (default: 30s)
	ConnectTimeout time.Duration

	// ReadTimeout bounds each read from a connection (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout bounds each write to a connection (default: 30s)
	WriteTimeout time.Duration

	// UserAgent is added to requests that carry none
	UserAgent string

	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// IdleConnTimeout is capped at ReadTimeout: the read deadline also
	// runs while a pooled connection sits idle.
	IdleConnTimeout time.Duration

	// Transport replaces the pooled transport (tests use a mock here).
	// The connection timeouts do not apply to a replaced transport.
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with the standard 30s timeouts.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:      DefaultTimeout,
		ReadTimeout:         DefaultTimeout,
		WriteTimeout:        DefaultTimeout,
		UserAgent:           defaultUserAgent,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = d.MaxIdleConnsPerHost
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = d.IdleConnTimeout
	}
	c.IdleConnTimeout = min(c.IdleConnTimeout, c.ReadTimeout)
	return c
}

// Client is safe for concurrent use.
type Client struct {
	client    *http.Client
	transport *http.Transport
	cfg       Config
}

// New creates a client. A nil cfg uses DefaultConfig; zero fields take
// their defaults. Interceptors run in the order given, first outermost.
func New(cfg *Config, interceptors ...Interceptor) *Client {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()

	dialer := &net.Dialer{
		Timeout:   c.ConnectTimeout,
		KeepAlive: defaultDialKeepAlive,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return newDeadlineConn(conn, c.ReadTimeout, c.WriteTimeout), nil
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          c.MaxIdleConns,
		MaxIdleConnsPerHost:   c.MaxIdleConnsPerHost,
		IdleConnTimeout:       c.IdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: c.ReadTimeout,
	}

	var rt http.RoundTripper = transport
	if c.Transport != nil {
		rt = c.Transport
	}
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] != nil {
			rt = interceptors[i](rt)
		}
	}

	return &Client{
		client:    &http.Client{Transport: rt},
		transport: transport,
		cfg:       c,
	}
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Do executes req under ctx. The response body must be closed by the
// caller if err is nil.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.WithContext(ctx)

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	return c.client.Do(req)
}

// Get performs a GET request with context.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Close closes idle connections in the pool.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}
