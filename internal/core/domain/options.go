package domain

import "strings"

// ArchivedPolicy decides how archived nodes are treated during discovery and filtering.
type ArchivedPolicy int

const (
	// ArchivedInclude keeps archived and active nodes alike.
	ArchivedInclude ArchivedPolicy = iota
	// ArchivedExclude drops archived nodes.
	ArchivedExclude
	// ArchivedOnly keeps only archived repositories.
	ArchivedOnly
)

func (p ArchivedPolicy) String() string {
	switch p {
	case ArchivedInclude:
		return "include"
	case ArchivedExclude:
		return "exclude"
	case ArchivedOnly:
		return "only"
	default:
		return "unknown"
	}
}

// AllowsRepository reports whether a repository with the given archived flag passes the policy.
func (p ArchivedPolicy) AllowsRepository(archived bool) bool {
	switch p {
	case ArchivedExclude:
		return !archived
	case ArchivedOnly:
		return archived
	default:
		return true
	}
}

// AllowsGroup reports whether a group with the given archived flag is expanded.
// Under ArchivedOnly active groups are still expanded since they can hold archived repositories.
func (p ArchivedPolicy) AllowsGroup(archived bool) bool {
	if p == ArchivedExclude {
		return !archived
	}
	return true
}

// HostFilter returns the value to send as the host's "archived" listing
// parameter, or nil when the host should not filter.
func (p ArchivedPolicy) HostFilter() *bool {
	var v bool
	switch p {
	case ArchivedExclude:
		v = false
	case ArchivedOnly:
		v = true
	default:
		return nil
	}
	return &v
}

// ParseArchivedPolicy parses include, exclude, or only.
func ParseArchivedPolicy(s string) (ArchivedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include":
		return ArchivedInclude, nil
	case "exclude":
		return ArchivedExclude, nil
	case "only":
		return ArchivedOnly, nil
	default:
		return 0, NewConfigError("archived", "must be include, exclude or only, got %q", s)
	}
}

// NamingStrategy selects which host attribute names folders and tree nodes.
type NamingStrategy int

const (
	// NamingName uses the display name.
	NamingName NamingStrategy = iota
	// NamingPath uses the URL path segment.
	NamingPath
)

func (n NamingStrategy) String() string {
	switch n {
	case NamingName:
		return "name"
	case NamingPath:
		return "path"
	default:
		return "unknown"
	}
}

// Pick returns name or slug according to the strategy.
func (n NamingStrategy) Pick(name, slug string) string {
	if n == NamingPath && slug != "" {
		return slug
	}
	if name == "" {
		return slug
	}
	return name
}

// ParseNamingStrategy parses name or path.
func ParseNamingStrategy(s string) (NamingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return NamingName, nil
	case "path":
		return NamingPath, nil
	default:
		return 0, NewConfigError("naming", "must be name or path, got %q", s)
	}
}

// CloneMethod selects which clone URL is used.
type CloneMethod int

const (
	// CloneSSH clones over SSH.
	CloneSSH CloneMethod = iota
	// CloneHTTP clones over HTTP(S), optionally with the token embedded.
	CloneHTTP
)

func (m CloneMethod) String() string {
	switch m {
	case CloneSSH:
		return "ssh"
	case CloneHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// ParseCloneMethod parses ssh or http.
func ParseCloneMethod(s string) (CloneMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ssh":
		return CloneSSH, nil
	case "http", "https":
		return CloneHTTP, nil
	default:
		return 0, NewConfigError("method", "must be ssh or http, got %q", s)
	}
}

// PrintFormat selects the output format for printing a tree.
type PrintFormat int

const (
	// PrintTree renders an indented tree.
	PrintTree PrintFormat = iota
	// PrintJSON renders the tree as JSON.
	PrintJSON
	// PrintYAML renders the tree as YAML.
	PrintYAML
)

func (f PrintFormat) String() string {
	switch f {
	case PrintTree:
		return "tree"
	case PrintJSON:
		return "json"
	case PrintYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParsePrintFormat parses tree, json, or yaml.
func ParsePrintFormat(s string) (PrintFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tree":
		return PrintTree, nil
	case "json":
		return PrintJSON, nil
	case "yaml", "yml":
		return PrintYAML, nil
	default:
		return 0, NewConfigError("print-format", "must be tree, json or yaml, got %q", s)
	}
}

// HostType identifies the remote API flavour.
type HostType int

const (
	// HostGitLab is a GitLab instance with nested groups.
	HostGitLab HostType = iota
	// HostGitHub is GitHub, where organisations act as top-level groups.
	HostGitHub
)

func (h HostType) String() string {
	switch h {
	case HostGitLab:
		return "gitlab"
	case HostGitHub:
		return "github"
	default:
		return "unknown"
	}
}

// ParseHostType parses gitlab or github.
func ParseHostType(s string) (HostType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gitlab":
		return HostGitLab, nil
	case "github":
		return HostGitHub, nil
	default:
		return 0, NewConfigError("host", "must be gitlab or github, got %q", s)
	}
}

// VCSBackend selects the VCS implementation.
type VCSBackend int

const (
	// VCSGitCLI shells out to the git binary.
	VCSGitCLI VCSBackend = iota
	// VCSGoGit uses the pure Go git implementation.
	VCSGoGit
)

func (b VCSBackend) String() string {
	switch b {
	case VCSGitCLI:
		return "git"
	case VCSGoGit:
		return "go-git"
	default:
		return "unknown"
	}
}

// ParseVCSBackend parses git or go-git.
func ParseVCSBackend(s string) (VCSBackend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "git":
		return VCSGitCLI, nil
	case "go-git", "gogit":
		return VCSGoGit, nil
	default:
		return 0, NewConfigError("vcs", "must be git or go-git, got %q", s)
	}
}
