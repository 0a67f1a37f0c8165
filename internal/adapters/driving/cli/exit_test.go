package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFatal, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitEmptyTree, ExitCode(fmt.Errorf("%w: nothing", domain.ErrEmptyTree)))
	assert.Equal(t, ExitPartial, ExitCode(&ExitError{Code: ExitPartial}))
	assert.Equal(t, ExitTotalFailure, ExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: ExitTotalFailure})))
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())

	cause := errors.New("cause")
	err := &ExitError{Code: 1, Err: cause}
	assert.Equal(t, "cause", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDiscoveryExitCode(t *testing.T) {
	discErr := fmt.Errorf("%w: list top groups: 401", domain.ErrDiscovery)
	assert.Equal(t, ExitTotalFailure, discoveryExitCode(discErr, false))
	assert.Equal(t, ExitFatal, discoveryExitCode(discErr, true))
	assert.Equal(t, ExitFatal, discoveryExitCode(errors.New("other"), false))
}

func TestSyncExitCode(t *testing.T) {
	ok := domain.SyncResult{Outcome: domain.OutcomeCloned}
	failed := domain.SyncResult{Outcome: domain.OutcomeFailed}

	assert.Equal(t, ExitOK, syncExitCode(&domain.SyncReport{Results: []domain.SyncResult{ok}}, 0))
	assert.Equal(t, ExitPartial, syncExitCode(&domain.SyncReport{Results: []domain.SyncResult{ok}}, 1))
	assert.Equal(t, ExitPartial, syncExitCode(&domain.SyncReport{Results: []domain.SyncResult{ok, failed}}, 0))
	assert.Equal(t, ExitTotalFailure, syncExitCode(&domain.SyncReport{Results: []domain.SyncResult{failed, failed}}, 0))
}
