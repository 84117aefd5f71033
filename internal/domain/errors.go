package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the image API is unreachable
	ErrServerOffline = errors.New("image API is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("API key is invalid")

	// ErrRateLimited indicates the API request quota is exhausted
	ErrRateLimited = errors.New("API rate limit exceeded")

	// ErrInvalidRequest indicates the API rejected the request parameters
	ErrInvalidRequest = errors.New("invalid API request")

	// ErrNotConfigured indicates no API key has been set up
	ErrNotConfigured = errors.New("API key is not configured")

	// ErrPageOutOfRange indicates a remote page past the last result
	ErrPageOutOfRange = errors.New("page is out of range")
)

// IsTransient reports whether err may clear up on its own
func IsTransient(err error) bool {
	return errors.Is(err, ErrServerOffline) || errors.Is(err, ErrRateLimited)
}
