package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

func planScenario(t *testing.T, vcs *mockVCS, dest string) []domain.SyncAction {
	t.Helper()
	actions, err := NewSyncPlanner(vcs, PlanOptions{}).Plan(scenarioTree(), dest, domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	return actions
}

func manyActions(dest string, n int) []domain.SyncAction {
	actions := make([]domain.SyncAction, n)
	for i := range actions {
		name := fmt.Sprintf("repo%02d", i)
		actions[i] = domain.SyncAction{
			NodePath:  "/g/" + name,
			Name:      name,
			URL:       "git@host:g/" + name + ".git",
			LocalPath: filepath.Join(dest, "g", name),
		}
	}
	return actions
}

func TestSyncManager_CloneThenPull(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	m := NewSyncManager(vcs, nil, false)

	report, err := m.Run(context.Background(), planScenario(t, vcs, dest), 2, false)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	for _, r := range report.Results {
		assert.Equal(t, domain.OutcomeCloned, r.Outcome)
		assert.NoError(t, r.Err)
	}
	assert.NotEmpty(t, report.RunID)

	second := planScenario(t, vcs, dest)
	assert.Equal(t, domain.ModePull, second[0].Mode)

	report, err = m.Run(context.Background(), second, 2, false)
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.Equal(t, domain.OutcomePulled, r.Outcome)
	}
	assert.Len(t, vcs.cloned, 2)
	assert.Len(t, vcs.pulled, 2)
}

func TestSyncManager_PartialFailureIsolation(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	actions := manyActions(dest, 10)
	vcs.failURLs[actions[3].URL] = errors.New("Permission denied (publickey)")

	report, err := NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 4, false)
	require.NoError(t, err)
	require.Len(t, report.Results, len(actions))

	for i, r := range report.Results {
		assert.Equal(t, actions[i], r.Action, "results are index-aligned")
		if i == 3 {
			assert.Equal(t, domain.OutcomeFailed, r.Outcome)
			assert.ErrorIs(t, r.Err, domain.ErrSync)
			assert.Contains(t, r.Err.Error(), "publickey")
			continue
		}
		assert.Equal(t, domain.OutcomeCloned, r.Outcome)
	}
	assert.Equal(t, 1, report.Count(domain.OutcomeFailed))
	assert.Len(t, report.Failures(), 1)
}

func TestSyncManager_FailFastSkipsRemaining(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	actions := manyActions(dest, 8)
	vcs.failURLs[actions[0].URL] = errors.New("boom")

	report, err := NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 1, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSync)
	require.Len(t, report.Results, len(actions))

	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome)
	for _, r := range report.Results[1:] {
		assert.Equal(t, domain.OutcomeSkipped, r.Outcome)
		assert.ErrorIs(t, r.Err, domain.ErrAborted)
	}
	assert.Empty(t, vcs.cloned)
}

func TestSyncManager_ExistingNonRepositoryFails(t *testing.T) {
	dest := t.TempDir()
	actions := manyActions(dest, 1)
	require.NoError(t, os.MkdirAll(actions[0].LocalPath, 0o755))

	report, err := NewSyncManager(newMockVCS(), nil, false).Run(context.Background(), actions, 1, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome)
	assert.ErrorIs(t, report.Results[0].Err, domain.ErrNotACheckout)
}

func TestSyncManager_FetchForMirrors(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	actions := manyActions(dest, 1)
	actions[0].Mirror = true
	actions[0].Recursive = true

	_, err := NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 1, false)
	require.NoError(t, err)
	require.Len(t, vcs.cloneOpts, 1)
	assert.True(t, vcs.cloneOpts[0].Mirror)
	assert.True(t, vcs.cloneOpts[0].Recursive)

	_, err = NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 1, false)
	require.NoError(t, err)
	require.Len(t, vcs.pullOpts, 1)
	assert.True(t, vcs.pullOpts[0].UseFetch)
}

func TestSyncManager_PullFailure(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	actions := manyActions(dest, 1)
	_, err := NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 1, false)
	require.NoError(t, err)

	vcs.failPaths[actions[0].LocalPath] = errors.New("not possible to fast-forward")
	report, err := NewSyncManager(vcs, nil, false).Run(context.Background(), actions, 1, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Err.Error(), "pull")
}

func TestSyncManager_DryRun(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	report, err := NewSyncManager(vcs, nil, true).Run(context.Background(), manyActions(dest, 3), 2, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(domain.OutcomeSkipped))
	assert.Empty(t, vcs.cloned)
	_, statErr := os.Stat(filepath.Join(dest, "g"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncManager_BoundedConcurrency(t *testing.T) {
	vcs := newMockVCS()
	vcs.delay = 5 * time.Millisecond
	_, err := NewSyncManager(vcs, nil, false).Run(context.Background(), manyActions(t.TempDir(), 12), 3, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, vcs.maxInflight.Load(), int64(3))
}

func TestSyncManager_ProgressAndElapsed(t *testing.T) {
	progress := &recordingProgress{}
	report, err := NewSyncManager(newMockVCS(), progress, false).Run(context.Background(), manyActions(t.TempDir(), 4), 2, false)
	require.NoError(t, err)

	assert.Len(t, progress.started, 4)
	assert.Len(t, progress.ended, 4)
	for _, r := range report.Results {
		assert.GreaterOrEqual(t, r.Elapsed, time.Duration(0))
	}
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestSyncManager_EmptyAndInvalid(t *testing.T) {
	m := NewSyncManager(newMockVCS(), nil, false)

	report, err := m.Run(context.Background(), nil, 2, false)
	require.NoError(t, err)
	assert.Empty(t, report.Results)

	_, err = m.Run(context.Background(), nil, 0, false)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSyncManager_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actions := manyActions(t.TempDir(), 3)
	report, err := NewSyncManager(newMockVCS(), nil, false).Run(ctx, actions, 1, false)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Results, 3)
	for _, r := range report.Results {
		assert.Equal(t, domain.OutcomeSkipped, r.Outcome)
	}
}

func TestSyncService_PlanAndRun(t *testing.T) {
	vcs := newMockVCS()
	svc := NewSyncService(vcs, nil, PlanOptions{Recursive: true}, false)
	dest := t.TempDir()

	actions, err := svc.PlanSync(scenarioTree(), dest, domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	report, err := svc.RunSync(context.Background(), actions, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(domain.OutcomeCloned))
}
