package cli

import (
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/repotree/internal/adapters/driving/tui"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/core/services"
	"github.com/custodia-labs/repotree/internal/logger"
)

// progressUI is the progress sink of one run plus its lifecycle hooks.
type progressUI struct {
	sink    driven.ProgressSink
	planned func(total int)
	once    sync.Once
	closeFn func()
}

// stop is idempotent so every exit path can call it before printing.
func (p *progressUI) stop() {
	p.once.Do(p.closeFn)
}

// startProgress picks the bars when stderr is a terminal and verbose
// output is off, log lines otherwise, and nothing with --no-progress.
func startProgress(cmd *cobra.Command, run runOptions, interrupt func()) *progressUI {
	if run.noProgress {
		return &progressUI{sink: driven.NopProgress{}, planned: func(int) {}, closeFn: func() {}}
	}

	out := cmd.ErrOrStderr()
	if isTerminal(out) && !run.verbose {
		var in io.Reader
		if isTerminal(cmd.InOrStdin()) {
			in = cmd.InOrStdin()
		}
		s := tui.Start(out, in, interrupt)
		return &progressUI{
			sink:    s,
			planned: s.SyncPlanned,
			closeFn: func() {
				if err := s.Stop(); err != nil {
					logger.Debug("Progress display: %v", err)
				}
			},
		}
	}

	return &progressUI{sink: logProgress{}, planned: func(int) {}, closeFn: func() {}}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// logProgress reports sync events as log lines.
type logProgress struct{}

func (logProgress) OnDiscoveryProgress(completed, totalEstimate int) {
	logger.Debug("Discovery %d/%d", completed, totalEstimate)
}

func (logProgress) OnSyncStart(action domain.SyncAction) {
	logger.Info("%s %s -> %s", action.Mode, action.NodePath, action.LocalPath)
}

func (logProgress) OnSyncEnd(result domain.SyncResult) {
	if result.Outcome == domain.OutcomeFailed {
		logger.Error(result.Err, "%s (%s) failed", result.Action.NodePath, services.RedactURL(result.Action.URL))
		return
	}
	logger.Info("%s %s in %s", result.Outcome, result.Action.NodePath, result.Elapsed)
}
