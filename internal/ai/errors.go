package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for provider operations.
var (
	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("provider rate limited")

	// ErrProviderDown indicates the provider is temporarily unavailable.
	ErrProviderDown = errors.New("provider unavailable")

	// ErrInvalidRequest indicates the provider rejected the request.
	ErrInvalidRequest = errors.New("provider rejected request")

	// ErrEmptyResponse indicates the provider answered without usable text.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrAllProviders indicates all providers in the chain have been exhausted.
	ErrAllProviders = errors.New("all providers failed")

	// ErrNoProvider indicates no provider is configured.
	ErrNoProvider = errors.New("no provider configured")
)

// statusError maps an HTTP status code to a sentinel error.
func statusError(provider string, code int, detail string) error {
	var kind error
	switch {
	case code == http.StatusTooManyRequests:
		kind = ErrRateLimit
	case code >= http.StatusInternalServerError:
		kind = ErrProviderDown
	default:
		kind = ErrInvalidRequest
	}
	if detail == "" {
		return fmt.Errorf("%s: %w (status %d)", provider, kind, code)
	}
	return fmt.Errorf("%s: %w (status %d): %s", provider, kind, code, detail)
}

// isCancellation reports whether err comes from the caller's context.
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ctx.Err())
}
