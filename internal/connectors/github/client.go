package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PerPage is the page size used for every listing.
	PerPage = 100

	// PublicHost is the host name of github.com; any other host is
	// treated as a GitHub Enterprise Server instance.
	PublicHost = "github.com"
)

// Verify interface compliance.
var _ driven.RemoteAPI = (*Client)(nil)

// Client implements driven.RemoteAPI for GitHub. Organisations are the
// tree's groups; GitHub has no nested organisations so every group is a
// leaf group holding repositories.
type Client struct {
	gh       *gh.Client
	observer driven.RateObserver
}

// NewClient creates a GitHub API client with a static access token.
// Works for both PAT and OAuth access tokens. An empty token gives
// anonymous access.
func NewClient(ctx context.Context, baseURL, token string, observer driven.RateObserver) (*Client, error) {
	tc := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
		tc.Timeout = DefaultTimeout
	}

	client := gh.NewClient(tc)
	enterprise, err := isEnterprise(baseURL)
	if err != nil {
		return nil, err
	}
	if enterprise {
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, domain.NewConfigError("url", "%v", err)
		}
	}
	return &Client{gh: client, observer: observer}, nil
}

func isEnterprise(baseURL string) (bool, error) {
	if baseURL == "" {
		return false, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return false, domain.NewConfigError("url", "must be an absolute URL, got %q", baseURL)
	}
	host := strings.ToLower(u.Hostname())
	return host != PublicHost && host != "api."+PublicHost, nil
}

// ListTopGroups lists the organisations of the authenticated user whose
// login contains search.
func (c *Client) ListTopGroups(ctx context.Context, search string) ([]driven.GroupRef, error) {
	opts := &gh.ListOptions{PerPage: PerPage}
	search = strings.ToLower(search)

	var refs []driven.GroupRef
	for {
		orgs, resp, err := c.gh.Organizations.List(ctx, "", opts)
		c.observe(resp)
		if err != nil {
			return nil, wrapError(err, "list organisations")
		}
		for _, o := range orgs {
			if search != "" && !strings.Contains(strings.ToLower(o.GetLogin()), search) {
				continue
			}
			refs = append(refs, orgRef(o))
		}
		if resp.NextPage == 0 {
			return refs, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListSubgroups always returns nothing: organisations do not nest.
func (c *Client) ListSubgroups(context.Context, string) ([]driven.GroupRef, error) {
	return nil, nil
}

// GetGroupDetail fetches an organisation by login.
func (c *Client) GetGroupDetail(ctx context.Context, groupID string) (*driven.GroupDetail, error) {
	org, resp, err := c.gh.Organizations.Get(ctx, groupID)
	c.observe(resp)
	if err != nil {
		return nil, wrapError(err, "get organisation "+groupID)
	}
	return &driven.GroupDetail{GroupRef: orgRef(org), Description: org.GetDescription()}, nil
}

// ListRepositories lists an organisation's repositories. Forks count as
// shared repositories and are only listed when includeShared is set.
func (c *Client) ListRepositories(ctx context.Context, groupID string, includeShared bool, archived domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}
	if !includeShared {
		opts.Type = "sources"
	}

	var refs []driven.RepoRef
	for {
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, groupID, opts)
		c.observe(resp)
		if err != nil {
			return nil, wrapError(err, "list repositories of "+groupID)
		}
		refs = appendRepos(refs, repos, archived)
		if resp.NextPage == 0 {
			return refs, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListUserRepositories lists repositories owned by a user.
func (c *Client) ListUserRepositories(ctx context.Context, username string, archived domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: PerPage},
	}

	var refs []driven.RepoRef
	for {
		repos, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
		c.observe(resp)
		if err != nil {
			return nil, wrapError(err, "list repositories of user "+username)
		}
		refs = appendRepos(refs, repos, archived)
		if resp.NextPage == 0 {
			return refs, nil
		}
		opts.Page = resp.NextPage
	}
}

// CurrentUser returns the login the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	u, resp, err := c.gh.Users.Get(ctx, "")
	c.observe(resp)
	if err != nil {
		return "", wrapError(err, "current user")
	}
	return u.GetLogin(), nil
}

// observe forwards X-RateLimit-* state, already parsed by go-github.
func (c *Client) observe(resp *gh.Response) {
	if c.observer == nil || resp == nil || resp.Rate.Limit == 0 {
		return
	}
	c.observer.Observe(resp.Rate.Remaining, resp.Rate.Reset.Time)
}

func appendRepos(refs []driven.RepoRef, repos []*gh.Repository, archived domain.ArchivedPolicy) []driven.RepoRef {
	for _, r := range repos {
		if r.GetDisabled() || !archived.AllowsRepository(r.GetArchived()) {
			continue
		}
		refs = append(refs, driven.RepoRef{
			ID:       strconv.FormatInt(r.GetID(), 10),
			Name:     r.GetName(),
			Path:     r.GetName(),
			FullPath: r.GetFullName(),
			HTTPURL:  r.GetCloneURL(),
			SSHURL:   r.GetSSHURL(),
			WebURL:   r.GetHTMLURL(),
			Archived: r.GetArchived(),
			Shared:   r.GetFork(),
		})
	}
	return refs
}

func orgRef(o *gh.Organization) driven.GroupRef {
	name := o.GetName()
	if name == "" {
		name = o.GetLogin()
	}
	return driven.GroupRef{
		ID:       o.GetLogin(),
		Name:     name,
		Path:     o.GetLogin(),
		FullPath: o.GetLogin(),
		WebURL:   webURL(o),
	}
}

func webURL(o *gh.Organization) string {
	if u := o.GetHTMLURL(); u != "" {
		return u
	}
	return fmt.Sprintf("https://%s/%s", PublicHost, o.GetLogin())
}
