package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// GroupRef is a group as returned by a listing call.
// Subgroup listings may return shallow refs that need GetGroupDetail.
type GroupRef struct {
	ID string
	// ParentID is empty for top-level groups.
	ParentID string
	Name     string
	// Path is the URL path segment of the group.
	Path     string
	FullPath string
	WebURL   string
	Archived bool
}

// GroupDetail is the fully hydrated form of a group.
type GroupDetail struct {
	GroupRef
	Description string
}

// RepoRef is a repository as returned by a listing call.
type RepoRef struct {
	ID       string
	Name     string
	Path     string
	FullPath string
	HTTPURL  string
	SSHURL   string
	WebURL   string
	Archived bool
	// Shared is true when the repository lives in another namespace and
	// was shared into the listed group.
	Shared bool
}

// RemoteAPI is the host capability used by discovery.
// Implementations handle pagination and authentication; the core
// applies rate limiting around every call.
type RemoteAPI interface {
	// ListTopGroups returns groups visible to the caller, narrowed by an
	// optional host-side search term. Refs with a ParentID are ignored by the core.
	ListTopGroups(ctx context.Context, search string) ([]GroupRef, error)

	// ListSubgroups returns the direct subgroups of a group.
	ListSubgroups(ctx context.Context, groupID string) ([]GroupRef, error)

	// GetGroupDetail hydrates a group ref.
	GetGroupDetail(ctx context.Context, groupID string) (*GroupDetail, error)

	// ListRepositories returns the repositories directly inside a group.
	// The archived policy is a hint; the core re-applies it.
	ListRepositories(ctx context.Context, groupID string, includeShared bool, archived domain.ArchivedPolicy) ([]RepoRef, error)

	// ListUserRepositories returns the personal repositories of a user.
	ListUserRepositories(ctx context.Context, username string, archived domain.ArchivedPolicy) ([]RepoRef, error)

	// CurrentUser returns the username the token belongs to.
	CurrentUser(ctx context.Context) (string, error)
}

// RateObserver receives the quota a host advertises in its response headers.
// The core rate limiter implements it; API clients feed it.
type RateObserver interface {
	Observe(remaining int, reset time.Time)
}
