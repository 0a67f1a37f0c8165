package driven

import (
	"context"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// RunStore keeps a history of sync runs.
type RunStore interface {
	// SaveRun records a finished run.
	SaveRun(ctx context.Context, run domain.RunSummary) error

	// ListRuns returns the most recent runs first, at most limit of them.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
}
