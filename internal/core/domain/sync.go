package domain

import "time"

// SyncMode is the operation a SyncAction is expected to perform.
type SyncMode int

const (
	// ModeClone creates a new checkout.
	ModeClone SyncMode = iota
	// ModePull updates an existing working copy.
	ModePull
	// ModeFetch updates an existing mirror without touching a working tree.
	ModeFetch
)

func (m SyncMode) String() string {
	switch m {
	case ModeClone:
		return "clone"
	case ModePull:
		return "pull"
	case ModeFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// SyncOutcome is the terminal state of an executed SyncAction.
type SyncOutcome int

const (
	// OutcomeCloned means a new checkout was created.
	OutcomeCloned SyncOutcome = iota
	// OutcomePulled means an existing checkout was updated.
	OutcomePulled
	// OutcomeSkipped means nothing was done (dry run or aborted run).
	OutcomeSkipped
	// OutcomeFailed means the operation failed. Err holds the cause.
	OutcomeFailed
)

func (o SyncOutcome) String() string {
	switch o {
	case OutcomeCloned:
		return "cloned"
	case OutcomePulled:
		return "pulled"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncAction is a planned operation for one repository.
type SyncAction struct {
	// NodePath is the repository's tree path.
	NodePath string
	// Name is the repository's display name.
	Name string
	// URL is the clone URL.
	URL string
	// LocalPath is the absolute target directory.
	LocalPath string
	// Mode is the planned operation. Execution re-checks the disk.
	Mode SyncMode
	// Recursive includes submodules.
	Recursive bool
	// Mirror clones a bare mirror and later updates with fetch.
	Mirror bool
	// Options are extra arguments passed to the clone.
	Options []string
}

// SyncResult records what happened to one SyncAction.
type SyncResult struct {
	Action  SyncAction
	Outcome SyncOutcome
	Err     error
	Elapsed time.Duration
}

// SyncReport summarises one RunSync invocation.
type SyncReport struct {
	// RunID identifies the run in logs and report files.
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SyncResult
}

// Count returns the number of results with the given outcome.
func (r *SyncReport) Count(o SyncOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Failures returns the failed results in action order.
func (r *SyncReport) Failures() []SyncResult {
	var out []SyncResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// RunSummary is the persisted digest of a SyncReport.
type RunSummary struct {
	RunID      string
	URL        string
	Dest       string
	StartedAt  time.Time
	FinishedAt time.Time
	Cloned     int
	Pulled     int
	Skipped    int
	Failed     int
}

// Summary condenses the report for the run history.
func (r *SyncReport) Summary(url, dest string) RunSummary {
	return RunSummary{
		RunID:      r.RunID,
		URL:        url,
		Dest:       dest,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Cloned:     r.Count(OutcomeCloned),
		Pulled:     r.Count(OutcomePulled),
		Skipped:    r.Count(OutcomeSkipped),
		Failed:     r.Count(OutcomeFailed),
	}
}
