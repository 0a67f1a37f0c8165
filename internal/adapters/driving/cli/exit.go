package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFatal        = 1
	ExitPartial      = 2
	ExitTotalFailure = 3
	ExitEmptyTree    = 4
)

// ExitError carries an exit code chosen by a command. Err may be nil when
// the outcome was already reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if errors.Is(err, domain.ErrEmptyTree) {
		return ExitEmptyTree
	}
	return ExitFatal
}

// discoveryExitCode classifies a fatal BuildTree error. An aborted
// fail-fast run is fatal; a discovery that failed at the root is a total
// failure.
func discoveryExitCode(err error, failFast bool) int {
	if !failFast && errors.Is(err, domain.ErrDiscovery) {
		return ExitTotalFailure
	}
	return ExitFatal
}

// syncExitCode classifies a completed run.
func syncExitCode(report *domain.SyncReport, discoveryErrs int) int {
	failed := report.Count(domain.OutcomeFailed)
	switch {
	case len(report.Results) > 0 && failed == len(report.Results):
		return ExitTotalFailure
	case failed > 0 || discoveryErrs > 0:
		return ExitPartial
	default:
		return ExitOK
	}
}
