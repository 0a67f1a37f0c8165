package driving

import (
	"context"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// SyncService plans and executes clone-or-update actions.
type SyncService interface {
	// PlanSync emits one action per repository leaf in depth-first order.
	// updateMode is ModePull or ModeFetch and is used for existing checkouts.
	PlanSync(tree *domain.Node, dest string, naming domain.NamingStrategy, updateMode domain.SyncMode) ([]domain.SyncAction, error)

	// RunSync executes actions with the given concurrency. The returned
	// results are index-aligned with actions.
	RunSync(ctx context.Context, actions []domain.SyncAction, concurrency int, failFast bool) (*domain.SyncReport, error)
}
