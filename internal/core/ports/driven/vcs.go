package driven

import "context"

// CloneOptions controls a clone.
type CloneOptions struct {
	// Recursive clones submodules.
	Recursive bool
	// Mirror creates a bare mirror instead of a working copy.
	Mirror bool
	// Extra are additional arguments for the clone. Backends that cannot
	// honour them log and ignore them.
	Extra []string
}

// PullOptions controls an update of an existing checkout.
type PullOptions struct {
	// UseFetch fetches instead of pulling. Required for mirrors.
	UseFetch bool
	// Recursive updates submodules after the pull.
	Recursive bool
}

// VCS clones and updates local repositories.
// Implementations must be safe for concurrent use on distinct paths.
type VCS interface {
	// IsValidCheckout reports whether path holds a repository (working copy or bare).
	IsValidCheckout(path string) bool

	// Clone creates path from url. Parent directories are created as needed.
	Clone(ctx context.Context, url, path string, opts CloneOptions) error

	// Pull updates the repository at path from its origin.
	Pull(ctx context.Context, path string, opts PullOptions) error
}
