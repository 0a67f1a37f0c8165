// Package messages defines Bubbletea message types for the progress display.
// Each message mirrors one ProgressSink callback so the core never talks
// to the program directly.
package messages

import (
	"github.com/custodia-labs/repotree/internal/core/domain"
)

// DiscoveryProgressed reports finished discovery tasks.
type DiscoveryProgressed struct {
	Completed     int
	TotalEstimate int
}

// SyncPlanned announces the number of actions about to run.
type SyncPlanned struct {
	Total int
}

// SyncStarted is sent when an action begins.
type SyncStarted struct {
	Action domain.SyncAction
}

// SyncFinished is sent when an action reaches a terminal outcome.
type SyncFinished struct {
	Result domain.SyncResult
}

// Done asks the program to render a final frame and exit.
type Done struct{}
