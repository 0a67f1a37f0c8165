package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

func TestSyncPlanner_OneActionPerRepositoryInOrder(t *testing.T) {
	dest := t.TempDir()
	actions, err := NewSyncPlanner(nil, PlanOptions{}).Plan(scenarioTree(), dest+"/", domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, "/groupA/subgroup1/repo1", actions[0].NodePath)
	assert.Equal(t, filepath.Join(dest, "groupA", "subgroup1", "repo1"), actions[0].LocalPath)
	assert.Equal(t, "git@host:repo1", actions[0].URL)
	assert.Equal(t, domain.ModeClone, actions[0].Mode)
	assert.Equal(t, filepath.Join(dest, "groupA", "repo2"), actions[1].LocalPath)
}

func TestSyncPlanner_ExistingCheckoutPlansUpdate(t *testing.T) {
	dest := t.TempDir()
	vcs := newMockVCS()
	vcs.checkouts[filepath.Join(dest, "groupA", "subgroup1", "repo1")] = true

	actions, err := NewSyncPlanner(vcs, PlanOptions{}).Plan(scenarioTree(), dest, domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePull, actions[0].Mode)
	assert.Equal(t, domain.ModeClone, actions[1].Mode)
	assert.False(t, actions[0].Mirror)

	actions, err = NewSyncPlanner(vcs, PlanOptions{}).Plan(scenarioTree(), dest, domain.NamingName, domain.ModeFetch)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFetch, actions[0].Mode)
	assert.True(t, actions[1].Mirror)
}

func TestSyncPlanner_NamingStrategy(t *testing.T) {
	root := domain.NewRoot("")
	g := &domain.Node{Kind: domain.KindGroup, Name: "Platform Team", Slug: "platform", Path: "/Platform Team"}
	r := &domain.Node{Kind: domain.KindRepository, Name: "Billing API", Slug: "billing-api", Path: "/Platform Team/Billing API", URL: "u"}
	g.Children = []*domain.Node{r}
	root.Children = []*domain.Node{g}
	dest := t.TempDir()

	byName, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, dest, domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "Platform Team", "Billing API"), byName[0].LocalPath)

	byPath, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, dest, domain.NamingPath, domain.ModePull)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "platform", "billing-api"), byPath[0].LocalPath)
}

func TestSyncPlanner_CopiesOptions(t *testing.T) {
	actions, err := NewSyncPlanner(nil, PlanOptions{Recursive: true, GitOptions: []string{"--depth=1"}}).
		Plan(scenarioTree(), t.TempDir(), domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	for _, a := range actions {
		assert.True(t, a.Recursive)
		assert.Equal(t, []string{"--depth=1"}, a.Options)
	}
}

func TestSyncPlanner_DuplicateLocalPaths(t *testing.T) {
	root := domain.NewRoot("")
	g := &domain.Node{Kind: domain.KindGroup, Name: "g", Slug: "g", Path: "/g"}
	g.Children = []*domain.Node{
		{Kind: domain.KindRepository, Name: "Same", Slug: "same-1", Path: "/g/Same", URL: "u1"},
		{Kind: domain.KindRepository, Name: "Same", Slug: "same-2", Path: "/g/Same", URL: "u2"},
	}
	root.Children = []*domain.Node{g}

	_, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, t.TempDir(), domain.NamingName, domain.ModePull)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	actions, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, t.TempDir(), domain.NamingPath, domain.ModePull)
	require.NoError(t, err)
	assert.Len(t, actions, 2)
}

func TestSyncPlanner_SanitisesSegments(t *testing.T) {
	root := domain.NewRoot("")
	root.Children = []*domain.Node{{Kind: domain.KindRepository, Name: "a/b", Path: "/a/b", URL: "u"}}
	dest := t.TempDir()

	actions, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, dest, domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a_b"), actions[0].LocalPath)

	root.Children[0].Name = ".."
	_, err = NewSyncPlanner(nil, PlanOptions{}).Plan(root, dest, domain.NamingName, domain.ModePull)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSyncPlanner_SkipsRepositoriesWithoutURL(t *testing.T) {
	root := scenarioTree()
	root.Find("/groupA/repo2").URL = ""
	actions, err := NewSyncPlanner(nil, PlanOptions{}).Plan(root, t.TempDir(), domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}

func TestSyncPlanner_InvalidInput(t *testing.T) {
	p := NewSyncPlanner(nil, PlanOptions{})

	_, err := p.Plan(nil, "/tmp", domain.NamingName, domain.ModePull)
	assert.ErrorIs(t, err, domain.ErrSync)

	_, err = p.Plan(scenarioTree(), "", domain.NamingName, domain.ModePull)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = p.Plan(scenarioTree(), "/tmp", domain.NamingName, domain.ModeClone)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSyncPlanner_EmptyTree(t *testing.T) {
	actions, err := NewSyncPlanner(nil, PlanOptions{}).Plan(domain.NewRoot(""), t.TempDir(), domain.NamingName, domain.ModePull)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
