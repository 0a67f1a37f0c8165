package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// runOptions are the settings that shape output rather than the core run.
type runOptions struct {
	print       bool
	format      domain.PrintFormat
	noProgress  bool
	verbose     bool
	reportPath  string
	noHistory   bool
	tokenSource string
}

// resolver looks a setting up in flags, then the environment, then the
// configuration file. The first source that has it wins.
type resolver struct {
	flags  *pflag.FlagSet
	getenv func(string) string
	file   driven.ConfigStore
}

func (r *resolver) env(names []string) (string, bool) {
	for _, n := range names {
		if v := strings.TrimSpace(r.getenv(n)); v != "" {
			return v, true
		}
	}
	return "", false
}

func (r *resolver) fileValue(key string) (any, bool) {
	if r.file == nil || key == "" {
		return nil, false
	}
	return r.file.Get(key)
}

func (r *resolver) str(flag string, envs []string, key string) string {
	if r.flags.Changed(flag) {
		v, _ := r.flags.GetString(flag)
		return v
	}
	if v, ok := r.env(envs); ok {
		return v
	}
	if _, ok := r.fileValue(key); ok {
		return r.file.GetString(key)
	}
	v, _ := r.flags.GetString(flag)
	return v
}

func (r *resolver) integer(flag string, envs []string, key string) (int, error) {
	if r.flags.Changed(flag) {
		return r.flags.GetInt(flag)
	}
	if v, ok := r.env(envs); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, domain.NewConfigError(flag, "invalid integer %q from %s", v, strings.Join(envs, "/"))
		}
		return n, nil
	}
	if _, ok := r.fileValue(key); ok {
		return r.file.GetInt(key), nil
	}
	return r.flags.GetInt(flag)
}

func (r *resolver) float(flag string, envs []string, key string) (float64, error) {
	if r.flags.Changed(flag) {
		return r.flags.GetFloat64(flag)
	}
	if v, ok := r.env(envs); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, domain.NewConfigError(flag, "invalid number %q from %s", v, strings.Join(envs, "/"))
		}
		return f, nil
	}
	if _, ok := r.fileValue(key); ok {
		return r.file.GetFloat(key), nil
	}
	return r.flags.GetFloat64(flag)
}

func (r *resolver) boolean(flag string, envs []string, key string) (bool, error) {
	if r.flags.Changed(flag) {
		return r.flags.GetBool(flag)
	}
	if v, ok := r.env(envs); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		default:
			return false, domain.NewConfigError(flag, "invalid boolean %q from %s", v, strings.Join(envs, "/"))
		}
	}
	if _, ok := r.fileValue(key); ok {
		return r.file.GetBool(key), nil
	}
	return r.flags.GetBool(flag)
}

// list reads a comma separated flag. Environment values are CSV too; the
// file may hold an array or a CSV string.
func (r *resolver) list(flag string, envs []string, key string) []string {
	if r.flags.Changed(flag) {
		v, _ := r.flags.GetStringSlice(flag)
		return splitCSV(strings.Join(v, ","))
	}
	if v, ok := r.env(envs); ok {
		return splitCSV(v)
	}
	if raw, ok := r.fileValue(key); ok {
		if s, isString := raw.(string); isString {
			return splitCSV(s)
		}
		return r.file.GetStringSlice(key)
	}
	v, _ := r.flags.GetStringSlice(flag)
	return v
}

func (r *resolver) duration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := r.fileValue(key)
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, domain.NewConfigError(key, "invalid duration %q", v)
		}
		return d, nil
	default:
		if n := r.file.GetInt(key); n > 0 {
			return time.Duration(n) * time.Second, nil
		}
		return 0, domain.NewConfigError(key, "must be a duration such as \"1h\"")
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveConfig builds the run configuration from flags, environment,
// and the configuration file, in that order of precedence.
//
//nolint:gocyclo,funlen // one lookup per setting
func resolveConfig(r *resolver, args []string) (domain.Config, runOptions, error) {
	cfg := domain.DefaultConfig()
	var run runOptions
	var err error

	if cfg.URL = r.str("url", []string{"REPOTREE_URL", "GITLAB_URL"}, "url"); cfg.URL == "" {
		cfg.URL = domain.DefaultURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	cfg.Token = r.str("token", []string{"REPOTREE_TOKEN", "GITLAB_TOKEN"}, "token")
	if cfg.Token != "" {
		run.tokenSource = "settings"
	}

	if cfg.Host, err = domain.ParseHostType(r.str("host", []string{"REPOTREE_HOST"}, "host")); err != nil {
		return cfg, run, err
	}
	if cfg.Method, err = domain.ParseCloneMethod(r.str("method", []string{"REPOTREE_METHOD", "GITLABBER_CLONE_METHOD"}, "method")); err != nil {
		return cfg, run, err
	}
	if cfg.Naming, err = domain.ParseNamingStrategy(r.str("naming", []string{"REPOTREE_NAMING", "GITLABBER_FOLDER_NAMING"}, "naming")); err != nil {
		return cfg, run, err
	}
	if cfg.Archived, err = domain.ParseArchivedPolicy(r.str("archived", []string{"REPOTREE_ARCHIVED"}, "archived")); err != nil {
		return cfg, run, err
	}
	if cfg.VCS, err = domain.ParseVCSBackend(r.str("vcs", []string{"REPOTREE_VCS"}, "vcs")); err != nil {
		return cfg, run, err
	}
	if run.format, err = domain.ParsePrintFormat(r.str("print-format", []string{"REPOTREE_PRINT_FORMAT"}, "print_format")); err != nil {
		return cfg, run, err
	}

	cfg.Includes = r.list("include", []string{"REPOTREE_INCLUDE", "GITLABBER_INCLUDE"}, "include")
	cfg.Excludes = r.list("exclude", []string{"REPOTREE_EXCLUDE", "GITLABBER_EXCLUDE"}, "exclude")
	cfg.GitOptions = r.list("git-options", []string{"REPOTREE_GIT_OPTIONS"}, "git_options")

	if cfg.Concurrency, err = r.integer("concurrency", []string{"REPOTREE_CONCURRENCY", "GITLABBER_GIT_CONCURRENCY"}, "concurrency"); err != nil {
		return cfg, run, err
	}
	if cfg.APIConcurrency, err = r.integer("api-concurrency", []string{"REPOTREE_API_CONCURRENCY", "GITLABBER_API_CONCURRENCY"}, "api.concurrency"); err != nil {
		return cfg, run, err
	}
	if cfg.APIRateLimit, err = r.integer("api-rate-limit", []string{"REPOTREE_API_RATE_LIMIT", "GITLABBER_API_RATE_LIMIT"}, "api.rate_limit"); err != nil {
		return cfg, run, err
	}
	if cfg.APIRequestsPerSecond, err = r.float("api-rps", []string{"REPOTREE_API_RPS"}, "api.requests_per_second"); err != nil {
		return cfg, run, err
	}
	if cfg.RateWindow, err = r.duration("api.rate_window", domain.DefaultRateWindow); err != nil {
		return cfg, run, err
	}

	bools := []struct {
		dst  *bool
		flag string
		env  string
		key  string
	}{
		{&cfg.Recursive, "recursive", "REPOTREE_RECURSIVE", "recursive"},
		{&cfg.UseFetch, "use-fetch", "REPOTREE_USE_FETCH", "use_fetch"},
		{&cfg.HideToken, "hide-token", "REPOTREE_HIDE_TOKEN", "hide_token"},
		{&cfg.IncludeShared, "include-shared", "REPOTREE_INCLUDE_SHARED", "include_shared"},
		{&cfg.FailFast, "fail-fast", "REPOTREE_FAIL_FAST", "fail_fast"},
		{&cfg.IgnoreCase, "ignore-case", "REPOTREE_IGNORE_CASE", "ignore_case"},
		{&cfg.DryRun, "dry-run", "REPOTREE_DRY_RUN", ""},
		{&run.noProgress, "no-progress", "REPOTREE_NO_PROGRESS", "no_progress"},
		{&run.verbose, "verbose", "REPOTREE_VERBOSE", "verbose"},
		{&run.noHistory, "no-history", "REPOTREE_NO_HISTORY", "no_history"},
	}
	for _, b := range bools {
		if *b.dst, err = r.boolean(b.flag, []string{b.env}, b.key); err != nil {
			return cfg, run, err
		}
	}

	userProjects, _ := r.flags.GetBool("user-projects")
	run.print, _ = r.flags.GetBool("print")
	run.reportPath, _ = r.flags.GetString("report")
	cfg.Username, _ = r.flags.GetString("username")
	cfg.GroupSearch, _ = r.flags.GetString("group-search")
	cfg.InFile, _ = r.flags.GetString("file")

	switch {
	case cfg.InFile != "":
		cfg.Mode = domain.TreeFromFile
	case userProjects || cfg.Username != "":
		cfg.Mode = domain.TreeFromUser
	default:
		cfg.Mode = domain.TreeFromGroups
	}

	if len(args) > 0 {
		cfg.Dest = domain.NormaliseDest(args[0])
	}
	if !run.print && cfg.Dest == "" {
		return cfg, run, domain.NewConfigError("dest", "a destination directory is required unless --print is given")
	}

	return cfg, run, cfg.Validate()
}
