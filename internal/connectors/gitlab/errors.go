package gitlab

import (
	"errors"
	"fmt"
	"net/http"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// APIError represents a GitLab API error response.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gitlab: %s: API error %d: %s (URL: %s)", e.Op, e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status code onto the domain error categories.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthRequired
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrAuthRequired)
}

// wrapError converts client-go errors to our error types.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var glErr *gl.ErrorResponse
	if errors.As(err, &glErr) && glErr.Response != nil {
		apiErr := &APIError{
			Op:         operation,
			StatusCode: glErr.Response.StatusCode,
			Message:    glErr.Message,
		}
		if glErr.Response.Request != nil {
			apiErr.URL = glErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("gitlab: %s: %w", operation, err)
}
