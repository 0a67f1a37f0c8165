package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	root := NewRoot("https://gitlab.example.com")
	groupA := &Node{ID: "1", Kind: KindGroup, Name: "groupA", Path: "/groupA"}
	sub := &Node{ID: "2", Kind: KindGroup, Name: "subgroup1", Path: "/groupA/subgroup1"}
	repo1 := &Node{ID: "10", Kind: KindRepository, Name: "repo1", Path: "/groupA/subgroup1/repo1"}
	repo2 := &Node{ID: "11", Kind: KindRepository, Name: "repo2", Path: "/groupA/repo2"}
	sub.Children = []*Node{repo1}
	groupA.Children = []*Node{sub, repo2}
	root.Children = []*Node{groupA}
	return root
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "root", KindRoot.String())
	assert.Equal(t, "group", KindGroup.String())
	assert.Equal(t, "repository", KindRepository.String())
	assert.Equal(t, "unknown", NodeKind(42).String())
}

func TestParseNodeKind(t *testing.T) {
	k, err := ParseNodeKind("project")
	require.NoError(t, err)
	assert.Equal(t, KindRepository, k)

	_, err = ParseNodeKind("folder")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNode_Repositories_DepthFirstOrder(t *testing.T) {
	repos := sampleTree().Repositories()
	require.Len(t, repos, 2)
	assert.Equal(t, "/groupA/subgroup1/repo1", repos[0].Path)
	assert.Equal(t, "/groupA/repo2", repos[1].Path)
}

func TestNode_Walk_Ancestors(t *testing.T) {
	var chain []string
	sampleTree().Walk(func(n *Node, ancestors []*Node) bool {
		if n.Name == "repo1" {
			for _, a := range ancestors {
				chain = append(chain, a.Kind.String())
			}
		}
		return true
	})
	assert.Equal(t, []string{"root", "group", "group"}, chain)
}

func TestNode_Walk_SkipChildren(t *testing.T) {
	visited := 0
	sampleTree().Walk(func(n *Node, _ []*Node) bool {
		visited++
		return n.Kind == KindRoot
	})
	assert.Equal(t, 2, visited)
}

func TestNode_CountAndFind(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, 5, root.Count())
	assert.Equal(t, "subgroup1", root.Find("/groupA/subgroup1").Name)
	assert.Nil(t, root.Find("/missing"))
}

func TestNode_ShallowCopy(t *testing.T) {
	root := sampleTree()
	cp := root.Children[0].ShallowCopy()
	assert.Empty(t, cp.Children)
	assert.Len(t, root.Children[0].Children, 2)
	assert.Equal(t, "/groupA/x", cp.ChildPath("x"))
	assert.Equal(t, "/groupA", NewRoot("").ChildPath("groupA"))
}
