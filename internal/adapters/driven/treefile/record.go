package treefile

import (
	"github.com/custodia-labs/repotree/internal/core/domain"
)

// Record is the serialised form of a domain.Node. The same shape is
// written by the json and yaml printers and read back by the Loader.
type Record struct {
	Name     string    `json:"name" yaml:"name"`
	Type     string    `json:"type" yaml:"type"`
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Slug     string    `json:"slug,omitempty" yaml:"slug,omitempty"`
	RootPath string    `json:"root_path" yaml:"root_path"`
	URL      string    `json:"url,omitempty" yaml:"url,omitempty"`
	HTTPURL  string    `json:"http_url,omitempty" yaml:"http_url,omitempty"`
	SSHURL   string    `json:"ssh_url,omitempty" yaml:"ssh_url,omitempty"`
	Archived bool      `json:"archived,omitempty" yaml:"archived,omitempty"`
	Shared   bool      `json:"shared,omitempty" yaml:"shared,omitempty"`
	Children []*Record `json:"children,omitempty" yaml:"children,omitempty"`
}

// FromNode converts a tree into records.
func FromNode(n *domain.Node) *Record {
	r := &Record{
		Name:     n.Name,
		Type:     n.Kind.String(),
		ID:       n.ID,
		Slug:     n.Slug,
		RootPath: n.Path,
		URL:      n.URL,
		HTTPURL:  n.HTTPURL,
		SSHURL:   n.SSHURL,
		Archived: n.Archived,
		Shared:   n.Shared,
	}
	for _, c := range n.Children {
		r.Children = append(r.Children, FromNode(c))
	}
	return r
}

// ToNode converts a record tree back into a domain tree. The top record
// must be the root. Paths are recomputed from names, so a hand-edited
// root_path cannot break the path invariant.
func (r *Record) ToNode() (*domain.Node, error) {
	kind, err := domain.ParseNodeKind(r.Type)
	if err != nil {
		return nil, err
	}
	if kind != domain.KindRoot {
		return nil, domain.NewConfigError("file", "top node must be the root, got %s", kind)
	}
	root := domain.NewRoot(r.URL)
	for _, c := range r.Children {
		child, err := c.toChild(root)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	return root, nil
}

func (r *Record) toChild(parent *domain.Node) (*domain.Node, error) {
	kind, err := domain.ParseNodeKind(r.Type)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindRoot {
		return nil, domain.NewConfigError("file", "root node nested under %q", parent.Path)
	}
	if r.Name == "" {
		return nil, domain.NewConfigError("file", "node without a name under %q", parent.Path)
	}
	if kind == domain.KindRepository && len(r.Children) > 0 {
		return nil, domain.NewConfigError("file", "repository %q has children", parent.ChildPath(r.Name))
	}

	n := &domain.Node{
		ID:       r.ID,
		Kind:     kind,
		Name:     r.Name,
		Slug:     r.Slug,
		Path:     parent.ChildPath(r.Name),
		URL:      r.URL,
		HTTPURL:  r.HTTPURL,
		SSHURL:   r.SSHURL,
		Archived: r.Archived,
		Shared:   r.Shared,
	}
	for _, c := range r.Children {
		child, err := c.toChild(n)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
