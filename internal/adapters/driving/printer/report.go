package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/services"
)

// PrintReport writes the outcome counts of a sync run followed by each
// failure with its remediation hint.
func PrintReport(w io.Writer, report *domain.SyncReport) error {
	st := newStyles(w)
	var b strings.Builder

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(&b, "%s %s in %s\n",
		st.emphasis.Render("Sync finished"), st.muted.Render("("+report.RunID+")"), elapsed)
	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		st.success.Render(fmt.Sprintf("cloned %d", report.Count(domain.OutcomeCloned))),
		st.success.Render(fmt.Sprintf("pulled %d", report.Count(domain.OutcomePulled))),
		st.warning.Render(fmt.Sprintf("skipped %d", report.Count(domain.OutcomeSkipped))),
		st.failure.Render(fmt.Sprintf("failed %d", report.Count(domain.OutcomeFailed))),
	)

	for _, res := range report.Failures() {
		fmt.Fprintf(&b, "%s %s (%s)\n", st.failure.Render("✗"), res.Action.NodePath, services.RedactURL(res.Action.URL))
		fmt.Fprintf(&b, "    %v\n", res.Err)
		if hint := domain.Suggest(res.Err); hint != "" {
			fmt.Fprintf(&b, "    %s\n", st.muted.Render(hint))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// PrintDiscoveryErrors lists the subtrees that could not be discovered.
func PrintDiscoveryErrors(w io.Writer, errs []domain.DiscoveryError) error {
	if len(errs) == 0 {
		return nil
	}
	st := newStyles(w)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", st.warning.Render(fmt.Sprintf("%d subtree(s) could not be discovered:", len(errs))))
	for _, e := range errs {
		fmt.Fprintf(&b, "  %s %v\n", st.warning.Render("!"), e)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// PrintRuns writes the run history as a table, newest first.
func PrintRuns(w io.Writer, runs []domain.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	st := newStyles(w)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", st.emphasis.Render(fmt.Sprintf("%-36s  %-20s  %6s  %6s  %7s  %6s  %s",
		"RUN", "STARTED", "CLONED", "PULLED", "SKIPPED", "FAILED", "DEST")))
	for _, r := range runs {
		fmt.Fprintf(&b, "%-36s  %-20s  %6d  %6d  %7d  %6d  %s\n",
			r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Cloned, r.Pulled, r.Skipped, r.Failed, r.Dest)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type reportFile struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Counts     map[string]int `json:"counts"`
	Results    []reportEntry  `json:"results"`
}

type reportEntry struct {
	Path      string `json:"path"`
	LocalPath string `json:"local_path"`
	URL       string `json:"url"`
	Mode      string `json:"mode"`
	Outcome   string `json:"outcome"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// WriteReportJSON writes a machine-readable report. Credentials embedded
// in clone URLs are redacted.
func WriteReportJSON(w io.Writer, report *domain.SyncReport) error {
	out := reportFile{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Counts:     make(map[string]int),
		Results:    make([]reportEntry, 0, len(report.Results)),
	}
	for _, o := range []domain.SyncOutcome{domain.OutcomeCloned, domain.OutcomePulled, domain.OutcomeSkipped, domain.OutcomeFailed} {
		out.Counts[o.String()] = report.Count(o)
	}
	for _, res := range report.Results {
		e := reportEntry{
			Path:      res.Action.NodePath,
			LocalPath: res.Action.LocalPath,
			URL:       services.RedactURL(res.Action.URL),
			Mode:      res.Action.Mode.String(),
			Outcome:   res.Outcome.String(),
			ElapsedMS: res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		out.Results = append(out.Results, e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
