package domain

import (
	"net/url"
	"strings"
	"time"
)

// Defaults applied when a field is left at its zero value by the caller.
const (
	// DefaultURL is the public GitLab instance.
	DefaultURL = "https://gitlab.com"
	// DefaultConcurrency is the number of parallel git operations.
	DefaultConcurrency = 1
	// DefaultAPIConcurrency is the number of parallel discovery workers.
	DefaultAPIConcurrency = 5
	// MaxAPIConcurrency caps discovery workers.
	MaxAPIConcurrency = 20
	// DefaultAPIRateLimit is the API request ceiling per DefaultRateWindow.
	DefaultAPIRateLimit = 2000
	// DefaultRateWindow is the sliding window the rate limit applies to.
	DefaultRateWindow = time.Hour
)

// TreeMode selects how the tree is discovered.
type TreeMode int

const (
	// TreeFromGroups walks top-level groups recursively.
	TreeFromGroups TreeMode = iota
	// TreeFromUser lists one user's personal repositories.
	TreeFromUser
	// TreeFromFile loads a previously printed tree.
	TreeFromFile
)

func (m TreeMode) String() string {
	switch m {
	case TreeFromGroups:
		return "groups"
	case TreeFromUser:
		return "user"
	case TreeFromFile:
		return "file"
	default:
		return "unknown"
	}
}

// Config is the validated run configuration.
type Config struct {
	// URL is the base URL of the host.
	URL string
	// Token authenticates API calls and optionally HTTP clones.
	Token string
	// Host selects the API flavour.
	Host HostType

	// Mode selects the discovery source.
	Mode TreeMode
	// Username is used in user mode. Empty means the token's owner.
	Username string
	// GroupSearch narrows top-level groups by a host-side search term.
	GroupSearch string
	// InFile is the tree file read in file mode.
	InFile string

	Method         CloneMethod
	Naming         NamingStrategy
	Archived       ArchivedPolicy
	IncludeShared  bool
	HideToken      bool
	Includes       []string
	Excludes       []string
	IgnoreCase     bool
	APIConcurrency int
	// APIRateLimit is the request ceiling per RateWindow. Zero disables limiting.
	APIRateLimit int
	RateWindow   time.Duration
	// APIRequestsPerSecond paces requests below the ceiling. Zero disables pacing.
	APIRequestsPerSecond float64
	FailFast             bool

	// Dest is the local root directory for checkouts.
	Dest        string
	Concurrency int
	Recursive   bool
	UseFetch    bool
	GitOptions  []string
	DryRun      bool
	VCS         VCSBackend
}

// DefaultConfig returns a Config populated with the defaults.
func DefaultConfig() Config {
	return Config{
		URL:            DefaultURL,
		IncludeShared:  true,
		APIConcurrency: DefaultAPIConcurrency,
		APIRateLimit:   DefaultAPIRateLimit,
		RateWindow:     DefaultRateWindow,
		Concurrency:    DefaultConcurrency,
	}
}

// NormaliseDest strips trailing separators while leaving "/" intact.
func NormaliseDest(dest string) string {
	trimmed := strings.TrimRight(dest, "/")
	if trimmed == "" && dest != "" {
		return "/"
	}
	return trimmed
}

// Validate checks field bounds. It does not compile patterns.
func (c *Config) Validate() error {
	if c.Mode != TreeFromFile {
		if c.URL == "" {
			return NewConfigError("url", "is required")
		}
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return NewConfigError("url", "must be an absolute URL, got %q", c.URL)
		}
	}
	if c.Mode == TreeFromFile && c.InFile == "" {
		return NewConfigError("file", "is required when reading the tree from a file")
	}
	if c.Concurrency < 1 {
		return NewConfigError("concurrency", "must be at least 1, got %d", c.Concurrency)
	}
	if c.APIConcurrency < 1 || c.APIConcurrency > MaxAPIConcurrency {
		return NewConfigError("api-concurrency", "must be between 1 and %d, got %d", MaxAPIConcurrency, c.APIConcurrency)
	}
	if c.APIRateLimit < 0 {
		return NewConfigError("api-rate-limit", "must not be negative, got %d", c.APIRateLimit)
	}
	if c.APIRequestsPerSecond < 0 {
		return NewConfigError("api-rps", "must not be negative, got %v", c.APIRequestsPerSecond)
	}
	if c.RateWindow <= 0 {
		return NewConfigError("rate-window", "must be positive")
	}
	for _, p := range append(append([]string{}, c.Includes...), c.Excludes...) {
		if strings.TrimSpace(p) == "" {
			return NewConfigError("patterns", "empty pattern")
		}
	}
	return nil
}
