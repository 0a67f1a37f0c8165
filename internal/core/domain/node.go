package domain

// NodeKind identifies the role of a node in the hierarchy.
type NodeKind int

const (
	// KindRoot is the synthetic top of every tree. Exactly one per tree.
	KindRoot NodeKind = iota
	// KindGroup is a container of subgroups and repositories.
	KindGroup
	// KindRepository is a leaf that can be cloned.
	KindRepository
)

// String returns the lowercase name of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindRepository:
		return "repository"
	default:
		return "unknown"
	}
}

// ParseNodeKind converts a serialised kind name back to a NodeKind.
// The original tool wrote "project" for repositories, so that is accepted too.
func ParseNodeKind(s string) (NodeKind, error) {
	switch s {
	case "root":
		return KindRoot, nil
	case "group":
		return KindGroup, nil
	case "repository", "project":
		return KindRepository, nil
	default:
		return 0, NewConfigError("type", "unknown node type %q", s)
	}
}

// Node is one element of the discovered hierarchy.
// A Node is treated as immutable once it is attached to its parent.
type Node struct {
	// ID is the host identifier. Empty for the root.
	ID string
	// Kind is root, group, or repository.
	Kind NodeKind
	// Name is the display segment chosen by the naming strategy.
	Name string
	// Slug is the host's URL path segment for the node.
	Slug string
	// Path is the slash-joined chain of ancestor names. The root's path is ""
	// so every other path starts with "/".
	Path string
	// URL is the clone URL selected by the clone method.
	// For groups it is the host's web page of the group.
	URL string
	// HTTPURL and SSHURL are the raw clone URLs reported by the host.
	HTTPURL string
	SSHURL  string
	// Archived is true when the host reports the node as archived.
	Archived bool
	// Shared is true for repositories shared into a group from another namespace.
	Shared bool
	// Children are ordered by discovery.
	Children []*Node
}

// NewRoot returns an empty root node.
func NewRoot(url string) *Node {
	return &Node{Kind: KindRoot, URL: url}
}

// ChildPath returns the path a child named name would have under n.
func (n *Node) ChildPath(name string) string {
	return n.Path + "/" + name
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits n and its descendants depth-first in child order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, ancestors []*Node) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(ancestors []*Node, fn func(*Node, []*Node) bool) {
	if !fn(n, ancestors) {
		return
	}
	chain := append(ancestors[:len(ancestors):len(ancestors)], n)
	for _, c := range n.Children {
		c.walk(chain, fn)
	}
}

// Repositories returns every repository below n in depth-first order.
func (n *Node) Repositories() []*Node {
	var out []*Node
	n.Walk(func(node *Node, _ []*Node) bool {
		if node.Kind == KindRepository {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, []*Node) bool {
		total++
		return true
	})
	return total
}

// Find returns the node with the given path, or nil.
func (n *Node) Find(path string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ []*Node) bool {
		if found != nil {
			return false
		}
		if node.Path == path {
			found = node
			return false
		}
		return true
	})
	return found
}

// ShallowCopy returns a copy of n without children.
func (n *Node) ShallowCopy() *Node {
	cp := *n
	cp.Children = nil
	return &cp
}
