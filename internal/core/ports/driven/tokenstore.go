package driven

import "context"

// TokenStore persists API tokens keyed by host URL.
type TokenStore interface {
	// Save stores or replaces the token for url.
	Save(ctx context.Context, url, token string) error

	// Get returns the token for url, or domain.ErrNotFound.
	Get(ctx context.Context, url string) (string, error)

	// Delete removes the token for url. Deleting a missing token returns domain.ErrNotFound.
	Delete(ctx context.Context, url string) error

	// List returns the URLs with stored tokens.
	List(ctx context.Context) ([]string, error)
}
