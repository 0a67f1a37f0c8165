package services

import (
	"context"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService plans and runs syncs against one VCS backend.
type SyncService struct {
	planner *SyncPlanner
	manager *SyncManager
}

// NewSyncService wires a planner and manager around vcs.
func NewSyncService(vcs driven.VCS, progress driven.ProgressSink, opts PlanOptions, dryRun bool) *SyncService {
	return &SyncService{
		planner: NewSyncPlanner(vcs, opts),
		manager: NewSyncManager(vcs, progress, dryRun),
	}
}

// PlanSync returns the actions for every repository in tree.
func (s *SyncService) PlanSync(tree *domain.Node, dest string, naming domain.NamingStrategy, updateMode domain.SyncMode) ([]domain.SyncAction, error) {
	return s.planner.Plan(tree, dest, naming, updateMode)
}

// RunSync executes actions.
func (s *SyncService) RunSync(ctx context.Context, actions []domain.SyncAction, concurrency int, failFast bool) (*domain.SyncReport, error) {
	return s.manager.Run(ctx, actions, concurrency, failFast)
}
