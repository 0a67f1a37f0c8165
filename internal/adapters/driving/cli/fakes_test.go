package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/custodia-labs/repotree/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// fakeAPI serves one top-level group "platform" holding two repositories.
type fakeAPI struct {
	topErr  error
	repoErr error
}

func (f *fakeAPI) ListTopGroups(context.Context, string) ([]driven.GroupRef, error) {
	if f.topErr != nil {
		return nil, f.topErr
	}
	return []driven.GroupRef{{ID: "1", Name: "platform", Path: "platform", FullPath: "platform"}}, nil
}

func (f *fakeAPI) ListSubgroups(context.Context, string) ([]driven.GroupRef, error) {
	return nil, nil
}

func (f *fakeAPI) GetGroupDetail(_ context.Context, id string) (*driven.GroupDetail, error) {
	return &driven.GroupDetail{GroupRef: driven.GroupRef{ID: id, Name: "platform", Path: "platform", FullPath: "platform"}}, nil
}

func (f *fakeAPI) ListRepositories(_ context.Context, groupID string, _ bool, _ domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	return []driven.RepoRef{
		{ID: "10", Name: "api", Path: "api", FullPath: "platform/api", SSHURL: "git@host:platform/api.git", HTTPURL: "https://host/platform/api.git"},
		{ID: "11", Name: "web", Path: "web", FullPath: "platform/web", SSHURL: "git@host:platform/web.git", HTTPURL: "https://host/platform/web.git"},
	}, nil
}

func (f *fakeAPI) ListUserRepositories(context.Context, string, domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	return []driven.RepoRef{{ID: "20", Name: "dotfiles", Path: "dotfiles", SSHURL: "git@host:me/dotfiles.git"}}, nil
}

func (f *fakeAPI) CurrentUser(context.Context) (string, error) {
	return "me", nil
}

// fakeVCS records operations instead of running git.
type fakeVCS struct {
	mu       sync.Mutex
	existing map[string]bool
	cloned   []string
	pulled   []string
	failAll  bool
	failPath string
}

func (v *fakeVCS) IsValidCheckout(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.existing[path]
}

func (v *fakeVCS) Clone(_ context.Context, _, path string, _ driven.CloneOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll || filepath.Base(path) == v.failPath {
		return errors.New("fatal: repository not found")
	}
	v.cloned = append(v.cloned, path)
	return nil
}

func (v *fakeVCS) Pull(_ context.Context, path string, _ driven.PullOptions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll {
		return errors.New("fatal: not possible to fast-forward")
	}
	v.pulled = append(v.pulled, path)
	return nil
}

type harness struct {
	api    *fakeAPI
	vcs    *fakeVCS
	tokens *memory.TokenStore
	runs   *memory.RunStore
	config *memory.ConfigStore
	env    map[string]string
	// apiToken is the token NewAPI was called with.
	apiToken string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger.SetOutput(&bytes.Buffer{})
	h := &harness{
		api:    &fakeAPI{},
		vcs:    &fakeVCS{existing: map[string]bool{}},
		tokens: memory.NewTokenStore(),
		runs:   memory.NewRunStore(),
		config: memory.NewConfigStore(nil),
		env:    map[string]string{},
	}
	SetDeps(&Deps{
		OpenConfig: func(string) (driven.ConfigStore, error) {
			return h.config, nil
		},
		NewAPI: func(_ context.Context, cfg domain.Config, _ driven.RateObserver) (driven.RemoteAPI, error) {
			h.apiToken = cfg.Token
			return h.api, nil
		},
		NewVCS: func(domain.Config) (driven.VCS, error) {
			return h.vcs, nil
		},
		Tokens: h.tokens,
		Runs:   h.runs,
		Getenv: func(k string) string { return h.env[k] },
	})
	t.Cleanup(func() {
		SetDeps(nil)
		logger.SetVerbose(false)
	})
	return h
}

// run executes the command line and returns stdout, stderr and the exit code.
func (h *harness) run(args ...string) (string, string, int) {
	return h.exec(append([]string{"--no-progress"}, args...)...)
}

func (h *harness) exec(args ...string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	reportError(cmd, err)
	return stdout.String(), stderr.String(), ExitCode(err)
}
