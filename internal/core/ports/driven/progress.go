package driven

import "github.com/custodia-labs/repotree/internal/core/domain"

// ProgressSink receives progress events. Calls must return quickly;
// the core never depends on a callback's completion.
type ProgressSink interface {
	// OnDiscoveryProgress reports finished discovery tasks against the
	// number of tasks known so far. The estimate grows as groups are found.
	OnDiscoveryProgress(completed, totalEstimate int)

	// OnSyncStart is called when an action begins.
	OnSyncStart(action domain.SyncAction)

	// OnSyncEnd is called when an action reaches a terminal outcome.
	OnSyncEnd(result domain.SyncResult)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) OnDiscoveryProgress(int, int) {}

func (NopProgress) OnSyncStart(domain.SyncAction) {}

func (NopProgress) OnSyncEnd(domain.SyncResult) {}
