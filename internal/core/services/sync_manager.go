package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// SyncManager executes sync actions with a fixed pool of workers.
type SyncManager struct {
	vcs      driven.VCS
	progress driven.ProgressSink
	dryRun   bool
	now      func() time.Time
}

// NewSyncManager creates a manager. A nil progress sink is replaced by a no-op.
func NewSyncManager(vcs driven.VCS, progress driven.ProgressSink, dryRun bool) *SyncManager {
	if progress == nil {
		progress = driven.NopProgress{}
	}
	return &SyncManager{vcs: vcs, progress: progress, dryRun: dryRun, now: time.Now}
}

// Run executes actions. Results are index-aligned with actions and every
// action gets exactly one result. A failure never stops other actions
// unless failFast is set, in which case actions not yet started are
// reported Skipped with domain.ErrAborted and the first failure is returned.
//
//nolint:gocyclo // worker pool with fail-fast bookkeeping
func (m *SyncManager) Run(ctx context.Context, actions []domain.SyncAction, concurrency int, failFast bool) (*domain.SyncReport, error) {
	if concurrency < 1 {
		return nil, domain.NewConfigError("concurrency", "must be at least 1, got %d", concurrency)
	}

	report := &domain.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: m.now(),
		Results:   make([]domain.SyncResult, len(actions)),
	}
	log := logger.Get().With().Str("run", report.RunID).Logger()

	logger.Section("Sync")
	log.Info().Int("actions", len(actions)).Int("workers", concurrency).Bool("dry_run", m.dryRun).Msg("Starting sync")

	// runCtx stops dispatch on fail-fast; in-flight operations keep ctx and finish.
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	progress := newProgressDispatcher(m.progress)
	defer progress.close()

	finished := make([]bool, len(actions))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < concurrency && w < len(actions); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				res := m.execute(ctx, actions[i], progress, log)
				report.Results[i] = res
				finished[i] = true
				if res.Outcome == domain.OutcomeFailed && failFast {
					cancel(res.Err)
				}
			}
		}()
	}

dispatch:
	for i := range actions {
		select {
		case <-runCtx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range actions {
		if !finished[i] {
			report.Results[i] = domain.SyncResult{Action: actions[i], Outcome: domain.OutcomeSkipped, Err: domain.ErrAborted}
		}
	}
	report.FinishedAt = m.now()

	log.Info().
		Int("cloned", report.Count(domain.OutcomeCloned)).
		Int("pulled", report.Count(domain.OutcomePulled)).
		Int("skipped", report.Count(domain.OutcomeSkipped)).
		Int("failed", report.Count(domain.OutcomeFailed)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Sync finished")

	if runCtx.Err() != nil {
		cause := context.Cause(runCtx)
		if errors.Is(cause, domain.ErrSync) {
			return report, fmt.Errorf("sync aborted: %w", cause)
		}
		return report, cause
	}
	return report, nil
}

func (m *SyncManager) execute(ctx context.Context, a domain.SyncAction, progress driven.ProgressSink, log zerolog.Logger) domain.SyncResult {
	start := m.now()
	progress.OnSyncStart(a)

	res := domain.SyncResult{Action: a}
	outcome, err := m.apply(ctx, a, log)
	res.Elapsed = m.now().Sub(start)
	if err != nil {
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		log.Error().Err(err).Str("path", a.NodePath).Msg("Sync failed")
	} else {
		res.Outcome = outcome
		log.Debug().Str("path", a.NodePath).Str("outcome", outcome.String()).Dur("elapsed", res.Elapsed).Msg("Sync done")
	}

	progress.OnSyncEnd(res)
	return res
}

// apply inspects the target path and runs the matching VCS operation.
func (m *SyncManager) apply(ctx context.Context, a domain.SyncAction, log zerolog.Logger) (domain.SyncOutcome, error) {
	if m.dryRun {
		log.Info().Str("path", a.LocalPath).Str("mode", a.Mode.String()).Msg("Dry run, skipping")
		return domain.OutcomeSkipped, nil
	}

	_, statErr := os.Stat(a.LocalPath)
	switch {
	case errors.Is(statErr, os.ErrNotExist):
		log.Info().Str("url", RedactURL(a.URL)).Str("path", a.LocalPath).Msg("Cloning")
		opts := driven.CloneOptions{Recursive: a.Recursive, Mirror: a.Mirror, Extra: a.Options}
		if err := m.vcs.Clone(ctx, a.URL, a.LocalPath, opts); err != nil {
			return 0, fmt.Errorf("%w: clone %s: %w", domain.ErrSync, a.NodePath, err)
		}
		return domain.OutcomeCloned, nil

	case statErr != nil:
		return 0, fmt.Errorf("%w: stat %s: %w", domain.ErrSync, a.LocalPath, statErr)

	case m.vcs.IsValidCheckout(a.LocalPath):
		useFetch := a.Mirror || a.Mode == domain.ModeFetch
		op := "pull"
		if useFetch {
			op = "fetch"
		}
		log.Info().Str("path", a.LocalPath).Str("op", op).Msg("Updating")
		if err := m.vcs.Pull(ctx, a.LocalPath, driven.PullOptions{UseFetch: useFetch, Recursive: a.Recursive}); err != nil {
			return 0, fmt.Errorf("%w: %s %s: %w", domain.ErrSync, op, a.NodePath, err)
		}
		return domain.OutcomePulled, nil

	default:
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrSync, a.LocalPath, domain.ErrNotACheckout)
	}
}
