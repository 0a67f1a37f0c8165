// Command repotree mirrors a GitLab group tree, or GitHub organisations,
// to a local directory.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/repotree/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repotree/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repotree/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/repotree/internal/adapters/driven/treefile"
	"github.com/custodia-labs/repotree/internal/adapters/driven/vcs/gitcli"
	"github.com/custodia-labs/repotree/internal/adapters/driven/vcs/gogit"
	"github.com/custodia-labs/repotree/internal/adapters/driving/cli"
	"github.com/custodia-labs/repotree/internal/connectors/github"
	"github.com/custodia-labs/repotree/internal/connectors/gitlab"
	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/core/services"
	"github.com/custodia-labs/repotree/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	deps := &cli.Deps{
		OpenConfig: openConfig,
		NewAPI:     newAPI,
		NewVCS:     newVCS,
		Loader:     treefile.NewLoader(),
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("Local database unavailable, tokens and history are not persisted: %v", err)
		deps.Tokens = memory.NewTokenStore()
		deps.Runs = memory.NewRunStore()
	} else {
		defer store.Close()
		deps.Tokens = store.TokenStore()
		deps.Runs = store.RunStore()
	}

	cli.SetDeps(deps)
	return cli.Execute()
}

func openConfig(dir string) (driven.ConfigStore, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newAPI(ctx context.Context, cfg domain.Config, observer driven.RateObserver) (driven.RemoteAPI, error) {
	if cfg.Host == domain.HostGitHub {
		c, err := github.NewClient(ctx, cfg.URL, cfg.Token, observer)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := gitlab.NewClient(cfg.URL, cfg.Token, gitlab.WithRateObserver(observer))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newVCS(cfg domain.Config) (driven.VCS, error) {
	if cfg.VCS == domain.VCSGitCLI {
		g := gitcli.New()
		if g.Available() {
			return g, nil
		}
		logger.Warn("git binary not found on PATH, using the built-in implementation")
	}
	return gogit.New(gogit.WithBasicAuth(services.TokenUser(cfg.Host), cfg.Token)), nil
}
