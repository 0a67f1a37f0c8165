package driving

import (
	"context"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// TreeService discovers and filters repository trees.
type TreeService interface {
	// BuildTree discovers the tree described by cfg. Non-fatal failures are
	// returned alongside the partial tree; a fatal error (fail-fast, root
	// listing failure, cancellation) returns a nil tree.
	BuildTree(ctx context.Context, cfg domain.Config) (*domain.Node, []domain.DiscoveryError, error)

	// FilterTree returns a new tree keeping repositories that match the
	// patterns and policy, plus their ancestors. The input is not modified.
	FilterTree(tree *domain.Node, includes, excludes []string, archived domain.ArchivedPolicy) (*domain.Node, error)
}
