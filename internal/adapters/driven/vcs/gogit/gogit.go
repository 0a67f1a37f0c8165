// Package gogit implements the VCS capability in-process with go-git.
//
// It needs no git binary. Clone URLs carrying credentials authenticate
// as-is; otherwise an optional token is sent as HTTP basic auth, so a
// hidden-token clone URL still works for private repositories.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// DefaultRemote is the remote pulled from.
const DefaultRemote = "origin"

// Verify interface compliance.
var _ driven.VCS = (*GoGit)(nil)

// GoGit clones and updates repositories with go-git.
type GoGit struct {
	auth *http.BasicAuth
}

// Option configures GoGit.
type Option func(*GoGit)

// WithBasicAuth authenticates HTTP(S) remotes whose URL carries no credentials.
func WithBasicAuth(username, token string) Option {
	return func(g *GoGit) {
		if token != "" {
			g.auth = &http.BasicAuth{Username: username, Password: token}
		}
	}
}

// New creates a GoGit backend.
func New(opts ...Option) *GoGit {
	g := &GoGit{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsValidCheckout reports whether path itself is a working copy or a bare repository.
func (g *GoGit) IsValidCheckout(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// Clone clones url into path. Of the extra clone arguments only --depth
// and --single-branch are understood; others are logged and ignored.
func (g *GoGit) Clone(ctx context.Context, url, path string, opts driven.CloneOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}

	cloneOpts := &git.CloneOptions{
		URL:    url,
		Mirror: opts.Mirror,
		Auth:   g.authFor(url),
	}
	if opts.Recursive && !opts.Mirror {
		cloneOpts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
	}
	if err := applyExtra(cloneOpts, opts.Extra); err != nil {
		return err
	}

	_, err := git.PlainCloneContext(ctx, path, opts.Mirror, cloneOpts)
	if err != nil {
		// A failed clone leaves a partial directory that would later be
		// reported as "not a checkout".
		_ = os.RemoveAll(path)
		return fmt.Errorf("clone: %w", err)
	}
	return nil
}

// Pull updates path from origin. Bare repositories are always fetched.
func (g *GoGit) Pull(ctx context.Context, path string, opts driven.PullOptions) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	auth, err := g.remoteAuth(repo)
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if opts.UseFetch || errors.Is(err, git.ErrIsBareRepository) {
		err = repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: DefaultRemote,
			Auth:       auth,
			Prune:      true,
			Tags:       git.AllTags,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("fetch: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	pullOpts := &git.PullOptions{RemoteName: DefaultRemote, Auth: auth}
	if opts.Recursive {
		pullOpts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
	}
	err = wt.PullContext(ctx, pullOpts)
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, git.ErrNonFastForwardUpdate):
		return fmt.Errorf("pull: local branch has diverged: %w", err)
	default:
		return fmt.Errorf("pull: %w", err)
	}
}

//nolint:ireturn // transport.AuthMethod is an interface required by go-git
func (g *GoGit) authFor(url string) transport.AuthMethod {
	if g.auth == nil {
		return nil
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil || (ep.Protocol != "http" && ep.Protocol != "https") || ep.Password != "" {
		return nil
	}
	return g.auth
}

//nolint:ireturn // transport.AuthMethod is an interface required by go-git
func (g *GoGit) remoteAuth(repo *git.Repository) (transport.AuthMethod, error) {
	remote, err := repo.Remote(DefaultRemote)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", DefaultRemote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, nil
	}
	return g.authFor(urls[0]), nil
}

func applyExtra(opts *git.CloneOptions, extra []string) error {
	for i := 0; i < len(extra); i++ {
		arg := extra[i]
		switch {
		case arg == "--single-branch":
			opts.SingleBranch = true
		case arg == "--depth" && i+1 < len(extra):
			i++
			if err := setDepth(opts, extra[i]); err != nil {
				return err
			}
		case strings.HasPrefix(arg, "--depth="):
			if err := setDepth(opts, strings.TrimPrefix(arg, "--depth=")); err != nil {
				return err
			}
		default:
			logger.Warn("go-git backend ignores clone option %q", arg)
		}
	}
	return nil
}

func setDepth(opts *git.CloneOptions, value string) error {
	depth, err := strconv.Atoi(value)
	if err != nil || depth < 0 {
		return fmt.Errorf("invalid --depth %q", value)
	}
	opts.Depth = depth
	return nil
}
