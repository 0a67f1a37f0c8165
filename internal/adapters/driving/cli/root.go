// Package cli implements the repotree command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repotree/internal/adapters/driving/printer"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/core/services"
	"github.com/custodia-labs/repotree/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

const rootLong = `repotree discovers the groups and repositories of a GitLab instance
(or GitHub organisations) and mirrors the selected part of the tree to disk.

Existing checkouts are updated, missing ones are cloned. Use --print to see
the tree without touching the disk.

Patterns for --include and --exclude match the full tree path:
  ?      one character except "/"
  *      any run of characters except "/"
  **     any run of characters including "/"
  [a-z]  a character class, [!a-z] negates
  {re}   an embedded regular expression

Exit codes: 0 success, 1 fatal or aborted, 2 partial failure,
3 every operation failed, 4 nothing matched.`

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "repotree [dest]",
		Short:         "Clone or update a tree of repositories from GitLab or GitHub",
		Long:          rootLong,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runRoot,
	}

	f := cmd.Flags()
	f.StringP("token", "t", "", "personal access token (env GITLAB_TOKEN)")
	f.StringP("url", "u", "", "base URL of the host (env GITLAB_URL, default "+domain.DefaultURL+")")
	f.String("host", "gitlab", "API flavour: gitlab or github")
	f.StringP("method", "m", "ssh", "clone method: ssh or http")
	f.String("naming", "name", "folder naming: name or path")
	f.StringP("archived", "a", "include", "archived repositories: include, exclude or only")
	f.StringSliceP("include", "i", nil, "comma separated patterns of paths to include")
	f.StringSliceP("exclude", "x", nil, "comma separated patterns of paths to exclude")
	f.Bool("ignore-case", false, "match patterns case-insensitively")
	f.BoolP("print", "p", false, "print the tree instead of syncing")
	f.String("print-format", "tree", "print format: tree, json or yaml")
	f.StringP("file", "f", "", "read the tree from a file written with --print-format json|yaml")
	f.IntP("concurrency", "c", domain.DefaultConcurrency, "number of parallel git operations")
	f.Int("api-concurrency", domain.DefaultAPIConcurrency, "number of parallel API requests (1-20)")
	f.Int("api-rate-limit", domain.DefaultAPIRateLimit, "maximum API requests per hour, 0 disables the limit")
	f.Float64("api-rps", 0, "pace API requests to this many per second, 0 disables pacing")
	f.BoolP("recursive", "r", false, "clone and update submodules")
	f.Bool("use-fetch", false, "mirror repositories and update them with fetch")
	f.Bool("hide-token", false, "do not embed the token in HTTP clone URLs")
	f.Bool("include-shared", true, "include repositories shared into groups")
	f.Bool("user-projects", false, "sync the personal repositories of the token's user")
	f.String("username", "", "sync the personal repositories of this user")
	f.StringP("group-search", "g", "", "only consider top-level groups matching this search term")
	f.StringSliceP("git-options", "o", nil, "comma separated options passed to git clone")
	f.Bool("fail-fast", false, "stop at the first error")
	f.Bool("dry-run", false, "plan the sync without running git")
	f.String("vcs", "git", "VCS backend: git (binary) or go-git (built in)")
	f.Bool("no-progress", false, "disable the progress display")
	f.Bool("no-history", false, "do not record the run in the history")
	f.String("report", "", "write a JSON report of the sync to this file")
	f.BoolP("verbose", "v", false, "print debug output")

	cmd.PersistentFlags().String("config-dir", "", "directory holding config.toml (default ~/.repotree)")

	cmd.AddCommand(newVersionCmd(), newTokenCmd(), newHistoryCmd(), newConfigCmd())
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	reportError(cmd, err)
	return ExitCode(err)
}

// reportError prints err and its remediation hint to stderr.
func reportError(cmd *cobra.Command, err error) {
	var ee *ExitError
	if err == nil || (errors.As(err, &ee) && ee.Err == nil) {
		return
	}
	cmd.PrintErrln("Error:", err)
	if hint := domain.Suggest(err); hint != "" {
		cmd.PrintErrln("Hint:", hint)
	}
}

func openConfig(cmd *cobra.Command) (driven.ConfigStore, error) {
	if deps.OpenConfig == nil {
		return nil, nil
	}
	dir, _ := cmd.Flags().GetString("config-dir")
	store, err := deps.OpenConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("open configuration: %w", err)
	}
	return store, nil
}

//nolint:gocyclo,funlen // linear pipeline with one branch per outcome
func runRoot(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	file, err := openConfig(cmd)
	if err != nil {
		return err
	}
	cfg, run, err := resolveConfig(&resolver{flags: cmd.Flags(), getenv: deps.Getenv, file: file}, args)
	if err != nil {
		return err
	}
	logger.SetVerbose(run.verbose)
	if file != nil {
		logger.Debug("Configuration file: %s", file.Path())
	}

	if cfg.Token == "" && cfg.Mode != domain.TreeFromFile && deps.Tokens != nil {
		token, err := deps.Tokens.Get(ctx, cfg.URL)
		switch {
		case err == nil:
			cfg.Token = token
			run.tokenSource = "token store"
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("Reading stored token: %v", err)
		}
	}
	logger.Debug("Running with url=%s host=%s mode=%s method=%s naming=%s archived=%s token=%s",
		cfg.URL, cfg.Host, cfg.Mode, cfg.Method, cfg.Naming, cfg.Archived, tokenLabel(cfg.Token, run.tokenSource))

	limiter := services.NewRateLimiter(cfg.APIRateLimit, cfg.RateWindow,
		services.WithPacing(cfg.APIRequestsPerSecond, cfg.APIConcurrency))

	var api driven.RemoteAPI
	if cfg.Mode != domain.TreeFromFile {
		if deps.NewAPI == nil {
			return errors.New("no API client configured")
		}
		if api, err = deps.NewAPI(ctx, cfg, limiter); err != nil {
			return err
		}
	}

	progress := startProgress(cmd, run, cancel)
	defer progress.stop()

	trees := services.NewTreeService(api,
		services.WithRateLimiter(limiter),
		services.WithTreeLoader(deps.Loader),
		services.WithDiscoveryProgress(progress.sink),
		services.WithIgnoreCase(cfg.IgnoreCase),
	)

	tree, discErrs, err := trees.BuildTree(ctx, cfg)
	if err != nil {
		progress.stop()
		if errors.Is(err, domain.ErrConfiguration) {
			return err
		}
		return &ExitError{Code: discoveryExitCode(err, cfg.FailFast), Err: err}
	}

	filtered, err := trees.FilterTree(tree, cfg.Includes, cfg.Excludes, cfg.Archived)
	if err != nil {
		progress.stop()
		return err
	}
	if len(filtered.Children) == 0 {
		progress.stop()
		_ = printer.PrintDiscoveryErrors(cmd.ErrOrStderr(), discErrs)
		return fmt.Errorf("%w: no groups or repositories left after filtering", domain.ErrEmptyTree)
	}

	if run.print {
		progress.stop()
		_ = printer.PrintDiscoveryErrors(cmd.ErrOrStderr(), discErrs)
		if err := printer.Print(cmd.OutOrStdout(), filtered, run.format); err != nil {
			return err
		}
		if len(discErrs) > 0 {
			return &ExitError{Code: ExitPartial}
		}
		return nil
	}

	if deps.NewVCS == nil {
		return errors.New("no VCS backend configured")
	}
	vcs, err := deps.NewVCS(cfg)
	if err != nil {
		return err
	}

	updateMode := domain.ModePull
	if cfg.UseFetch {
		updateMode = domain.ModeFetch
	}
	syncer := services.NewSyncService(vcs, progress.sink,
		services.PlanOptions{Recursive: cfg.Recursive, GitOptions: cfg.GitOptions}, cfg.DryRun)

	actions, err := syncer.PlanSync(filtered, cfg.Dest, cfg.Naming, updateMode)
	if err != nil {
		progress.stop()
		return err
	}
	if len(actions) == 0 {
		progress.stop()
		return fmt.Errorf("%w: the selected groups contain no repositories", domain.ErrEmptyTree)
	}
	progress.planned(len(actions))

	report, runErr := syncer.RunSync(ctx, actions, cfg.Concurrency, cfg.FailFast)
	progress.stop()
	if report == nil {
		return runErr
	}

	_ = printer.PrintDiscoveryErrors(cmd.ErrOrStderr(), discErrs)
	if err := printer.PrintReport(cmd.OutOrStdout(), report); err != nil {
		logger.Warn("Printing report: %v", err)
	}
	if run.reportPath != "" {
		if err := writeReport(run.reportPath, report); err != nil {
			logger.Error(err, "Writing report to %s", run.reportPath)
		}
	}
	if deps.Runs != nil && !run.noHistory && !cfg.DryRun {
		if err := deps.Runs.SaveRun(context.WithoutCancel(ctx), report.Summary(cfg.URL, cfg.Dest)); err != nil {
			logger.Warn("Recording run history: %v", err)
		}
	}

	if runErr != nil {
		return &ExitError{Code: ExitFatal, Err: runErr}
	}
	if code := syncExitCode(report, len(discErrs)); code != ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func writeReport(path string, report *domain.SyncReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := printer.WriteReportJSON(f, report); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func tokenLabel(token, source string) string {
	if token == "" {
		return "none"
	}
	return "xxxxx (" + source + ")"
}
