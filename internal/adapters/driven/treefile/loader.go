package treefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.TreeLoader = (*Loader)(nil)

// Loader reads trees written with --print-format json or yaml.
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadTree reads and validates the tree stored at path. JSON is parsed as
// YAML, which accepts it.
func (l *Loader) LoadTree(path string) (*domain.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewConfigError("file", "tree file %s does not exist", path)
		}
		return nil, fmt.Errorf("read tree file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.NewConfigError("file", "tree file %s is empty", path)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, domain.NewConfigError("file", "parse %s: %v", path, err)
	}
	return rec.ToNode()
}

// Write encodes the tree in the json or yaml format.
func Write(w io.Writer, root *domain.Node, format domain.PrintFormat) error {
	rec := FromNode(root)
	switch format {
	case domain.PrintJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case domain.PrintYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("treefile: unsupported format %s", format)
	}
}
