package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// PlanOptions are copied into every planned action.
type PlanOptions struct {
	Recursive  bool
	GitOptions []string
}

// SyncPlanner maps repository leaves to sync actions.
type SyncPlanner struct {
	vcs  driven.VCS
	opts PlanOptions
}

// NewSyncPlanner creates a planner. vcs is only used to preview whether a
// checkout already exists and may be nil.
func NewSyncPlanner(vcs driven.VCS, opts PlanOptions) *SyncPlanner {
	return &SyncPlanner{vcs: vcs, opts: opts}
}

// Plan walks tree depth-first and returns one action per repository.
// updateMode is the mode used for existing checkouts: ModePull, or ModeFetch
// for mirrors.
func (p *SyncPlanner) Plan(tree *domain.Node, dest string, naming domain.NamingStrategy, updateMode domain.SyncMode) ([]domain.SyncAction, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: nil tree", domain.ErrSync)
	}
	if updateMode != domain.ModePull && updateMode != domain.ModeFetch {
		return nil, domain.NewConfigError("mode", "update mode must be pull or fetch, got %s", updateMode)
	}
	dest = domain.NormaliseDest(dest)
	if dest == "" {
		return nil, domain.NewConfigError("dest", "is required")
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, domain.NewConfigError("dest", "%v", err)
	}

	var (
		actions []domain.SyncAction
		seen    = make(map[string]string)
		walkErr error
	)
	tree.Walk(func(n *domain.Node, ancestors []*domain.Node) bool {
		if walkErr != nil {
			return false
		}
		if n.Kind != domain.KindRepository {
			return true
		}
		if n.URL == "" {
			logger.Warn("Skipping %s: no clone URL", n.Path)
			return true
		}

		local, err := localPath(abs, ancestors, n, naming)
		if err != nil {
			walkErr = err
			return false
		}
		if other, dup := seen[local]; dup {
			walkErr = domain.NewConfigError("naming", "%s and %s map to the same directory %s", other, n.Path, local)
			return false
		}
		seen[local] = n.Path

		mode := domain.ModeClone
		if p.vcs != nil && p.vcs.IsValidCheckout(local) {
			mode = updateMode
		}
		actions = append(actions, domain.SyncAction{
			NodePath:  n.Path,
			Name:      n.Name,
			URL:       n.URL,
			LocalPath: local,
			Mode:      mode,
			Recursive: p.opts.Recursive,
			Mirror:    updateMode == domain.ModeFetch,
			Options:   p.opts.GitOptions,
		})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	logger.Info("Planned %d sync actions under %s", len(actions), abs)
	return actions, nil
}

func localPath(dest string, ancestors []*domain.Node, n *domain.Node, naming domain.NamingStrategy) (string, error) {
	parts := []string{dest}
	for _, a := range ancestors {
		if a.Kind == domain.KindRoot {
			continue
		}
		seg, err := sanitizeSegment(naming.Pick(a.Name, a.Slug))
		if err != nil {
			return "", err
		}
		parts = append(parts, seg)
	}
	seg, err := sanitizeSegment(naming.Pick(n.Name, n.Slug))
	if err != nil {
		return "", err
	}
	parts = append(parts, seg)
	return filepath.Join(parts...), nil
}

var segmentReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// sanitizeSegment makes a node name safe to use as one directory name.
func sanitizeSegment(name string) (string, error) {
	seg := strings.TrimSpace(segmentReplacer.Replace(name))
	if seg == "" || seg == "." || seg == ".." {
		return "", domain.NewConfigError("naming", "%q is not a usable directory name", name)
	}
	return seg, nil
}
