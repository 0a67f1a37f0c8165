package services

import (
	"fmt"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/logger"
)

// TreeFilter selects a subtree by include and exclude patterns.
// It never mutates its input.
type TreeFilter struct {
	ignoreCase bool
}

// NewTreeFilter creates a filter. Patterns are case-sensitive unless ignoreCase is set.
func NewTreeFilter(ignoreCase bool) *TreeFilter {
	return &TreeFilter{ignoreCase: ignoreCase}
}

// Filter returns a new tree holding the repositories that pass the
// patterns and archived policy, their ancestors, and groups that match
// on their own. Exclusion wins over inclusion. The root is always kept.
func (f *TreeFilter) Filter(tree *domain.Node, includes, excludes []string, archived domain.ArchivedPolicy) (*domain.Node, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: nil tree", domain.ErrFilter)
	}
	inc, err := CompilePatterns(includes, f.ignoreCase)
	if err != nil {
		return nil, err
	}
	exc, err := CompilePatterns(excludes, f.ignoreCase)
	if err != nil {
		return nil, err
	}

	keep := func(path string) bool {
		if inc.Len() > 0 && !inc.Match(path) {
			return false
		}
		return !exc.Match(path)
	}

	root := tree.ShallowCopy()
	for _, c := range tree.Children {
		if kept := filterNode(c, keep, archived); kept != nil {
			root.Children = append(root.Children, kept)
		}
	}

	logger.Debug("Filter kept %d of %d nodes (include=%v exclude=%v archived=%s)",
		root.Count(), tree.Count(), inc.Sources(), exc.Sources(), archived)
	return root, nil
}

func filterNode(n *domain.Node, keep func(string) bool, archived domain.ArchivedPolicy) *domain.Node {
	switch n.Kind {
	case domain.KindRepository:
		if archived.AllowsRepository(n.Archived) && keep(n.Path) {
			return n.ShallowCopy()
		}
		return nil
	case domain.KindGroup:
		if !archived.AllowsGroup(n.Archived) {
			return nil
		}
		cp := n.ShallowCopy()
		for _, c := range n.Children {
			if kept := filterNode(c, keep, archived); kept != nil {
				cp.Children = append(cp.Children, kept)
			}
		}
		if len(cp.Children) > 0 || keep(n.Path) {
			return cp
		}
		return nil
	default:
		return nil
	}
}
