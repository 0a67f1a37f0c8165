package cli

import (
	"context"
	"os"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// Deps holds the driven adapters the commands run against. main wires the
// real implementations; tests substitute fakes.
type Deps struct {
	// OpenConfig opens the configuration file in dir, or the default
	// location when dir is empty.
	OpenConfig func(dir string) (driven.ConfigStore, error)

	// NewAPI creates the host API client. observer receives rate limit
	// headers and may be nil.
	NewAPI func(ctx context.Context, cfg domain.Config, observer driven.RateObserver) (driven.RemoteAPI, error)

	// NewVCS creates the VCS backend selected by cfg.VCS.
	NewVCS func(cfg domain.Config) (driven.VCS, error)

	// Loader reads trees from files.
	Loader driven.TreeLoader

	// Tokens stores API tokens. Optional.
	Tokens driven.TokenStore

	// Runs records sync history. Optional.
	Runs driven.RunStore

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// deps holds the current dependencies.
var deps = &Deps{}

// SetDeps sets the dependencies used by all commands.
func SetDeps(d *Deps) {
	if d == nil {
		d = &Deps{}
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	deps = d
}
