package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors are the stable categories callers test with errors.Is.
var (
	// ErrConfiguration indicates invalid options or patterns. Raised before any network activity.
	ErrConfiguration = errors.New("configuration error")

	// ErrDiscovery indicates a failure while listing groups or repositories.
	ErrDiscovery = errors.New("discovery error")

	// ErrFilter indicates a failure while filtering a tree.
	ErrFilter = errors.New("filter error")

	// ErrSync indicates a clone or update failure.
	ErrSync = errors.New("sync error")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuthRequired indicates the host rejected the request for lack of credentials.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the host throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotACheckout indicates the local path exists but is not a valid repository.
	ErrNotACheckout = errors.New("path exists and is not a git repository")

	// ErrAborted marks actions that never ran because a fail-fast run stopped early.
	ErrAborted = errors.New("aborted")

	// ErrEmptyTree indicates that discovery or filtering produced nothing to work on.
	ErrEmptyTree = errors.New("tree is empty")
)

// ConfigError describes an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrConfiguration) hold.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// DiscoveryError is a non-fatal failure recorded for one subtree.
type DiscoveryError struct {
	// Path is the tree path of the node being expanded.
	Path string
	// NodeID is the host id of that node.
	NodeID string
	// Op names the API call that failed.
	Op string
	// Err is the underlying cause.
	Err error
}

func (e DiscoveryError) Error() string {
	where := e.Path
	if where == "" {
		where = "/"
	}
	return fmt.Sprintf("discovery error at %s (%s): %v", where, e.Op, e.Err)
}

func (e DiscoveryError) Unwrap() []error {
	return []error{ErrDiscovery, e.Err}
}

// Suggest returns a short remediation hint for err, or "" when none applies.
func Suggest(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, ErrAuthRequired):
		return "Check that the token is valid and has the read_api scope. Set it with --token, GITLAB_TOKEN or 'repotree token set'."
	case errors.Is(err, ErrRateLimited):
		return "The host is throttling requests. Lower --api-rate-limit or --api-concurrency and retry."
	case errors.Is(err, ErrNotFound):
		return "Check the URL and that the group or user exists and is visible to the token."
	case errors.Is(err, ErrEmptyTree):
		return "Nothing matched. Check --include/--exclude patterns and the --archived policy, or print the tree with --print."
	case errors.Is(err, ErrNotACheckout):
		return "Remove or rename the directory, or choose another destination."
	case errors.Is(err, ErrConfiguration):
		return "Run 'repotree --help' to review the accepted values."
	case strings.Contains(msg, "permission denied (publickey)"), strings.Contains(msg, "host key verification failed"):
		return "SSH authentication failed. Load your key into ssh-agent or use --method http."
	case strings.Contains(msg, "could not read username"), strings.Contains(msg, "authentication failed"):
		return "HTTP authentication failed. Provide a token or use --method ssh."
	case strings.Contains(msg, "503"), strings.Contains(msg, "502"):
		return "The host is temporarily unavailable. Retry later."
	default:
		return ""
	}
}
