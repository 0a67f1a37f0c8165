// Package gitcli implements the VCS capability by running the git binary.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// DefaultRemote is the remote pulled from.
const DefaultRemote = "origin"

// userinfoPattern matches the user:password part of a URL.
var userinfoPattern = regexp.MustCompile(`(://[^/@\s:]*):[^/@\s]+@`)

// Verify interface compliance.
var _ driven.VCS = (*Git)(nil)

// Git runs git commands. It is safe for concurrent use on distinct paths.
type Git struct {
	binary string
}

// New returns a Git using the git binary on PATH.
func New() *Git {
	return &Git{binary: "git"}
}

// Available reports whether the git binary can be found.
func (g *Git) Available() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// run executes a git command in dir and returns trimmed combined output.
func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	// No interactive prompts.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_MERGE_AUTOEDIT=no")

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	text := strings.TrimSpace(out.String())
	if err != nil {
		text = scrubCredentials(text)
		if text != "" {
			return text, fmt.Errorf("git %s: %w: %s", args[0], err, lastLine(text))
		}
		return text, fmt.Errorf("git %s: %w", args[0], err)
	}
	return text, nil
}

// IsValidCheckout reports whether path is the top of a working copy or a
// bare repository. A plain directory nested inside some other repository
// does not count.
func (g *Git) IsValidCheckout(path string) bool {
	ctx := context.Background()
	bare, err := g.run(ctx, path, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false
	}
	var root string
	if bare == "true" {
		root, err = g.run(ctx, path, "rev-parse", "--absolute-git-dir")
	} else {
		root, err = g.run(ctx, path, "rev-parse", "--show-toplevel")
	}
	return err == nil && sameDir(root, path)
}

// Clone runs git clone into path.
func (g *Git) Clone(ctx context.Context, url, path string, opts driven.CloneOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}

	args := []string{"clone", "--quiet"}
	if opts.Recursive && !opts.Mirror {
		args = append(args, "--recurse-submodules")
	}
	if opts.Mirror {
		args = append(args, "--mirror")
	}
	args = append(args, opts.Extra...)
	args = append(args, "--", url, path)

	_, err := g.run(ctx, filepath.Dir(path), args...)
	return err
}

// Pull updates path from origin. Pulls are fast-forward only so a
// diverged checkout fails instead of growing a merge commit.
func (g *Git) Pull(ctx context.Context, path string, opts driven.PullOptions) error {
	if opts.UseFetch {
		if _, err := g.run(ctx, path, "fetch", "--prune", "--tags", DefaultRemote); err != nil {
			return err
		}
		return nil
	}

	if _, err := g.run(ctx, path, "pull", "--ff-only", DefaultRemote); err != nil {
		return err
	}
	if opts.Recursive {
		logger.Debug("Updating submodules in %s", path)
		if _, err := g.run(ctx, path, "submodule", "update", "--init", "--recursive"); err != nil {
			return err
		}
	}
	return nil
}

func sameDir(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	return filepath.Clean(ra) == filepath.Clean(rb)
}

// scrubCredentials masks passwords embedded in URLs within git output.
func scrubCredentials(s string) string {
	return userinfoPattern.ReplaceAllString(s, "$1:xxxxx@")
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
