package driven

import "github.com/custodia-labs/repotree/internal/core/domain"

// TreeLoader reads a tree previously written by the json or yaml printer.
type TreeLoader interface {
	LoadTree(path string) (*domain.Node, error)
}
