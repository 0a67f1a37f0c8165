package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	Op      string
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return fmt.Sprintf("github: %s: rate limit exceeded", e.Op)
	}
	return fmt.Sprintf("github: %s: rate limit exceeded, resets at %s", e.Op, e.ResetAt.Format(time.RFC3339))
}

// Unwrap makes errors.Is(err, domain.ErrRateLimited) hold.
func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

// APIError represents a GitHub API error response.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: %s: API error %d: %s (URL: %s)", e.Op, e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status code onto the domain error categories.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthRequired
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// wrapError converts go-github errors to our error types.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Rate limit errors are checked first; go-github also reports them as 403s.
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{Op: operation, ResetAt: rateLimitErr.Rate.Reset.Time}
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		e := &RateLimitError{Op: operation}
		if abuseErr.RetryAfter != nil {
			e.ResetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return e
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			Op:         operation,
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("github: %s: %w", operation, err)
}
