package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxLoggedBody caps how much of a response body is written to the log
const maxLoggedBody = 4096

// redactedParams are masked when URLs are logged
var redactedParams = []string{"key", "token", "api_key"}

// QueryParams sets params on every request URL. Values for the same names
// supplied by the caller are overwritten; other parameters are kept.
func QueryParams(params url.Values) Interceptor {
	fixed := make(url.Values, len(params))
	for k, v := range params {
		fixed[k] = append([]string(nil), v...)
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			r := req.Clone(req.Context())
			q := r.URL.Query()
			for k, v := range fixed {
				q[k] = append([]string(nil), v...)
			}
			r.URL.RawQuery = q.Encode()
			return next.RoundTrip(r)
		})
	}
}

// RateLimit blocks each request until limiter grants a token or the
// request context ends. A nil limiter disables limiting.
func RateLimit(limiter *rate.Limiter) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		if limiter == nil {
			return next
		}
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
			return next.RoundTrip(req)
		})
	}
}

// PerWindow builds a limiter allowing n requests per window with a burst of n
func PerWindow(n int, window time.Duration) *rate.Limiter {
	if n <= 0 || window <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(window/time.Duration(n)), n)
}

// Logging logs every exchange at debug level. With logBodies the response
// body is logged too and re-buffered for the caller.
func Logging(logger *slog.Logger, logBodies bool) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			reqID := uuid.NewString()[:8]
			start := time.Now()
			target := RedactURL(req.URL)

			logger.Debug("http request", "id", reqID, "method", req.Method, "url", target)

			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)
			if err != nil {
				logger.Warn("http request failed", "id", reqID, "url", target, "duration", elapsed, "error", err)
				return nil, err
			}

			attrs := []any{"id", reqID, "status", resp.StatusCode, "duration", elapsed}
			if logBodies && resp.Body != nil {
				body, readErr := io.ReadAll(resp.Body)
				_ = resp.Body.Close()
				if readErr != nil {
					return nil, fmt.Errorf("failed to read response: %w", readErr)
				}
				resp.Body = io.NopCloser(bytes.NewReader(body))
				logged := body
				if len(logged) > maxLoggedBody {
					logged = logged[:maxLoggedBody]
				}
				attrs = append(attrs, "body", string(logged))
			}
			logger.Debug("http response", attrs...)
			return resp, nil
		})
	}
}

// RedactURL renders u with credential parameters masked
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	q := c.Query()
	changed := false
	for _, name := range redactedParams {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if changed {
		c.RawQuery = q.Encode()
	}
	return c.String()
}
