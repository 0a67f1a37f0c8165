package gitlab

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PerPage is the page size used for every listing.
	PerPage = 100

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "RateLimit-Reset"
)

// Verify interface compliance.
var _ driven.RemoteAPI = (*Client)(nil)

// Client implements driven.RemoteAPI on top of the GitLab REST API.
type Client struct {
	gl       *gl.Client
	observer driven.RateObserver
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	observer   driven.RateObserver
	noRetries  bool
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRateObserver reports the quota advertised in response headers.
func WithRateObserver(obs driven.RateObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithoutRetries disables the client's built-in retry of 429 and 5xx responses.
func WithoutRetries() Option {
	return func(o *options) { o.noRetries = true }
}

// NewClient creates a client for the GitLab instance at baseURL.
// An empty token gives anonymous access to public groups.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	o := &options{httpClient: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []gl.ClientOptionFunc{
		gl.WithBaseURL(strings.TrimRight(baseURL, "/") + "/api/v4"),
		gl.WithHTTPClient(o.httpClient),
	}
	if o.noRetries {
		clientOpts = append(clientOpts, gl.WithoutRetries())
	}

	c, err := gl.NewClient(token, clientOpts...)
	if err != nil {
		return nil, domain.NewConfigError("url", "%v", err)
	}
	return &Client{gl: c, observer: o.observer}, nil
}

// ListTopGroups lists top-level groups, optionally narrowed by search.
func (c *Client) ListTopGroups(ctx context.Context, search string) ([]driven.GroupRef, error) {
	opt := &gl.ListGroupsOptions{
		ListOptions:  gl.ListOptions{PerPage: PerPage},
		TopLevelOnly: gl.Ptr(true),
	}
	if search != "" {
		opt.Search = gl.Ptr(search)
	}

	var refs []driven.GroupRef
	for {
		var groups []*group
		resp, err := c.get(ctx, "groups", opt, &groups)
		if err != nil {
			return nil, wrapError(err, "list groups")
		}
		for _, g := range groups {
			refs = append(refs, g.ref())
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opt.Page = resp.NextPage
	}
}

// ListSubgroups lists the direct subgroups of a group.
func (c *Client) ListSubgroups(ctx context.Context, groupID string) ([]driven.GroupRef, error) {
	opt := &gl.ListSubGroupsOptions{ListOptions: gl.ListOptions{PerPage: PerPage}}

	var refs []driven.GroupRef
	for {
		var groups []*group
		resp, err := c.get(ctx, "groups/"+gl.PathEscape(groupID)+"/subgroups", opt, &groups)
		if err != nil {
			return nil, wrapError(err, "list subgroups of "+groupID)
		}
		for _, g := range groups {
			refs = append(refs, g.ref())
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opt.Page = resp.NextPage
	}
}

// GetGroupDetail fetches a single group without its projects.
func (c *Client) GetGroupDetail(ctx context.Context, groupID string) (*driven.GroupDetail, error) {
	g := new(group)
	opt := &gl.GetGroupOptions{WithProjects: gl.Ptr(false)}
	if _, err := c.get(ctx, "groups/"+gl.PathEscape(groupID), opt, g); err != nil {
		return nil, wrapError(err, "get group "+groupID)
	}
	return &driven.GroupDetail{GroupRef: g.ref(), Description: g.Description}, nil
}

// ListRepositories lists the projects directly inside a group.
func (c *Client) ListRepositories(ctx context.Context, groupID string, includeShared bool, archived domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	opt := &gl.ListGroupProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: PerPage},
		WithShared:  gl.Ptr(includeShared),
		Archived:    archived.HostFilter(),
	}
	ownerID, _ := strconv.Atoi(groupID)

	var refs []driven.RepoRef
	for {
		projects, resp, err := c.gl.Groups.ListGroupProjects(gid(groupID), opt, gl.WithContext(ctx))
		c.observe(resp)
		if err != nil {
			return nil, wrapError(err, "list projects of "+groupID)
		}
		for _, p := range projects {
			ref := repoRef(p)
			ref.Shared = p.Namespace != nil && ownerID != 0 && p.Namespace.ID != ownerID
			refs = append(refs, ref)
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opt.Page = resp.NextPage
	}
}

// ListUserRepositories lists the personal projects of a user.
func (c *Client) ListUserRepositories(ctx context.Context, username string, archived domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	opt := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: PerPage},
		Archived:    archived.HostFilter(),
	}

	var refs []driven.RepoRef
	for {
		projects, resp, err := c.gl.Projects.ListUserProjects(username, opt, gl.WithContext(ctx))
		c.observe(resp)
		if err != nil {
			return nil, wrapError(err, "list projects of user "+username)
		}
		for _, p := range projects {
			refs = append(refs, repoRef(p))
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opt.Page = resp.NextPage
	}
}

// CurrentUser returns the username the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	u, resp, err := c.gl.Users.CurrentUser(gl.WithContext(ctx))
	c.observe(resp)
	if err != nil {
		return "", wrapError(err, "current user")
	}
	return u.Username, nil
}

// get issues a GET through the client-go transport and decodes into v.
// Group listings go through here because gl.Group does not carry the
// archived flag.
func (c *Client) get(ctx context.Context, path string, opt, v any) (*gl.Response, error) {
	req, err := c.gl.NewRequest(http.MethodGet, path, opt, []gl.RequestOptionFunc{gl.WithContext(ctx)})
	if err != nil {
		return nil, err
	}
	resp, err := c.gl.Do(req, v)
	c.observe(resp)
	return resp, err
}

// observe forwards RateLimit-* headers to the observer, if any.
func (c *Client) observe(resp *gl.Response) {
	if c.observer == nil || resp == nil || resp.Response == nil {
		return
	}
	remaining, err := strconv.Atoi(resp.Header.Get(HeaderRateRemaining))
	if err != nil {
		return
	}
	reset, err := strconv.ParseInt(resp.Header.Get(HeaderRateReset), 10, 64)
	if err != nil {
		return
	}
	c.observer.Observe(remaining, time.Unix(reset, 0))
}

// gid passes numeric IDs as numbers and anything else as a full path.
func gid(id string) any {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return id
}

// group is gl.Group plus the fields the library does not decode.
type group struct {
	gl.Group
	Archived bool `json:"archived"`
}

func (g *group) ref() driven.GroupRef {
	ref := driven.GroupRef{
		ID:       strconv.Itoa(g.ID),
		Name:     g.Name,
		Path:     g.Path,
		FullPath: g.FullPath,
		WebURL:   g.WebURL,
		Archived: g.Archived,
	}
	if g.ParentID != 0 {
		ref.ParentID = strconv.Itoa(g.ParentID)
	}
	return ref
}

func repoRef(p *gl.Project) driven.RepoRef {
	return driven.RepoRef{
		ID:       strconv.Itoa(p.ID),
		Name:     p.Name,
		Path:     p.Path,
		FullPath: p.PathWithNamespace,
		HTTPURL:  p.HTTPURLToRepo,
		SSHURL:   p.SSHURLToRepo,
		WebURL:   p.WebURL,
		Archived: p.Archived,
	}
}
