package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

// draft is a node under construction. Its fields are set before it is
// attached to a parent; afterwards only its children list grows, under mu.
type draft struct {
	node  domain.Node
	rank  int // 0 for groups, 1 for repositories
	order int // position in the host listing

	mu       sync.Mutex
	children []*draft
}

func (d *draft) attach(c *draft) {
	d.mu.Lock()
	d.children = append(d.children, c)
	d.mu.Unlock()
}

// freeze converts the draft subtree into domain nodes. Children are ordered
// groups first, then repositories, each in host listing order, so the shape
// does not depend on worker scheduling.
func (d *draft) freeze() *domain.Node {
	n := d.node
	n.Children = nil
	sort.SliceStable(d.children, func(i, j int) bool {
		a, b := d.children[i], d.children[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.order < b.order
	})
	for _, c := range d.children {
		n.Children = append(n.Children, c.freeze())
	}
	return &n
}

// TreeBuilder discovers a group hierarchy with a bounded pool of workers.
// Every API call passes through the shared RateLimiter.
type TreeBuilder struct {
	api      driven.RemoteAPI
	limiter  *RateLimiter
	progress driven.ProgressSink
}

// NewTreeBuilder creates a builder. A nil progress sink is replaced by a no-op.
func NewTreeBuilder(api driven.RemoteAPI, limiter *RateLimiter, progress driven.ProgressSink) *TreeBuilder {
	if progress == nil {
		progress = driven.NopProgress{}
	}
	if limiter == nil {
		limiter = NewRateLimiter(0, domain.DefaultRateWindow)
	}
	return &TreeBuilder{api: api, limiter: limiter, progress: progress}
}

type buildState struct {
	cfg    domain.Config
	queue  *taskQueue
	cancel context.CancelCauseFunc

	mu   sync.Mutex
	errs []domain.DiscoveryError
}

func (s *buildState) fail(ctx context.Context, path, id, op string, err error) {
	if ctx.Err() != nil {
		return
	}
	de := domain.DiscoveryError{Path: path, NodeID: id, Op: op, Err: err}
	logger.Warn("%v", de)

	s.mu.Lock()
	s.errs = append(s.errs, de)
	s.mu.Unlock()

	if s.cfg.FailFast {
		s.cancel(de)
		s.queue.close()
	}
}

// Build discovers every top-level group and its descendants.
func (b *TreeBuilder) Build(ctx context.Context, cfg domain.Config) (*domain.Node, []domain.DiscoveryError, error) {
	logger.Section("Discovery")
	logger.Info("Building tree from %s with %d workers", cfg.URL, cfg.APIConcurrency)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	root := &draft{node: *domain.NewRoot(cfg.URL)}

	if err := b.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	groups, err := b.api.ListTopGroups(ctx, cfg.GroupSearch)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list top groups: %w", domain.ErrDiscovery, err)
	}

	st := &buildState{cfg: cfg, queue: newTaskQueue(), cancel: cancel}
	for i, g := range groups {
		if g.ParentID != "" {
			continue
		}
		if !cfg.Archived.AllowsGroup(g.Archived) {
			logger.Debug("Skipping archived group %s", g.FullPath)
			continue
		}
		d := newGroupDraft(root, g, i, cfg.Naming)
		root.attach(d)
		b.expand(st, d)
	}

	b.drain(ctx, st)

	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		var de domain.DiscoveryError
		if errors.As(cause, &de) {
			return nil, st.errs, fmt.Errorf("discovery aborted: %w", cause)
		}
		return nil, st.errs, cause
	}

	tree := root.freeze()
	sortDiscoveryErrors(st.errs)
	logger.Info("Discovered %d nodes, %d errors", tree.Count(), len(st.errs))
	return tree, st.errs, nil
}

// BuildUser discovers the personal repositories of one user under a
// synthetic "<username>-personal-projects" group.
func (b *TreeBuilder) BuildUser(ctx context.Context, cfg domain.Config) (*domain.Node, []domain.DiscoveryError, error) {
	logger.Section("Discovery")

	username := cfg.Username
	if username == "" {
		if err := b.limiter.Acquire(ctx); err != nil {
			return nil, nil, err
		}
		u, err := b.api.CurrentUser(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: current user: %w", domain.ErrDiscovery, err)
		}
		username = u
	}
	logger.Info("Building tree for user %s", username)

	root := domain.NewRoot(cfg.URL)
	name := username + "-personal-projects"
	group := &domain.Node{
		ID:   "user:" + username,
		Kind: domain.KindGroup,
		Name: name,
		Slug: name,
		Path: root.ChildPath(name),
		URL:  strings.TrimRight(cfg.URL, "/") + "/users/" + username + "/projects",
	}

	if err := b.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	refs, err := b.api.ListUserRepositories(ctx, username, cfg.Archived)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list user repositories: %w", domain.ErrDiscovery, err)
	}
	for _, ref := range refs {
		if !cfg.Archived.AllowsRepository(ref.Archived) {
			continue
		}
		group.Children = append(group.Children, newRepoNode(group, ref, cfg))
	}
	root.Children = []*domain.Node{group}
	b.progress.OnDiscoveryProgress(1, 1)
	return root, nil, nil
}

// expand queues the two independent listings of a group.
func (b *TreeBuilder) expand(st *buildState, d *draft) {
	st.queue.push(fetchTask{kind: taskListSubgroups, node: d})
	st.queue.push(fetchTask{kind: taskListRepositories, node: d})
}

func (b *TreeBuilder) drain(ctx context.Context, st *buildState) {
	stop := context.AfterFunc(ctx, st.queue.close)
	defer stop()

	workers := st.cfg.APIConcurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, ok := st.queue.pop()
				if !ok {
					return
				}
				b.run(ctx, st, t)
				completed, total := st.queue.done()
				b.progress.OnDiscoveryProgress(completed, total)
			}
		}()
	}
	wg.Wait()
}

func (b *TreeBuilder) run(ctx context.Context, st *buildState, t fetchTask) {
	if ctx.Err() != nil {
		return
	}
	if err := b.limiter.Acquire(ctx); err != nil {
		return
	}

	cfg := st.cfg
	switch t.kind {
	case taskListSubgroups:
		refs, err := b.api.ListSubgroups(ctx, t.node.node.ID)
		if err != nil {
			st.fail(ctx, t.node.node.Path, t.node.node.ID, t.kind.String(), err)
			return
		}
		for i, ref := range refs {
			st.queue.push(fetchTask{kind: taskHydrateGroup, node: t.node, ref: ref, order: i})
		}

	case taskHydrateGroup:
		detail, err := b.api.GetGroupDetail(ctx, t.ref.ID)
		if err != nil {
			path := t.node.node.ChildPath(cfg.Naming.Pick(t.ref.Name, t.ref.Path))
			st.fail(ctx, path, t.ref.ID, t.kind.String(), err)
			return
		}
		if !cfg.Archived.AllowsGroup(detail.Archived) {
			logger.Debug("Skipping archived group %s", detail.FullPath)
			return
		}
		d := newGroupDraft(t.node, detail.GroupRef, t.order, cfg.Naming)
		t.node.attach(d)
		b.expand(st, d)

	case taskListRepositories:
		refs, err := b.api.ListRepositories(ctx, t.node.node.ID, cfg.IncludeShared, cfg.Archived)
		if err != nil {
			st.fail(ctx, t.node.node.Path, t.node.node.ID, t.kind.String(), err)
			return
		}
		parent := &t.node.node
		for i, ref := range refs {
			if !cfg.Archived.AllowsRepository(ref.Archived) {
				continue
			}
			t.node.attach(&draft{node: *newRepoNode(parent, ref, cfg), rank: 1, order: i})
		}
	}
}

func newGroupDraft(parent *draft, ref driven.GroupRef, order int, naming domain.NamingStrategy) *draft {
	name := naming.Pick(ref.Name, ref.Path)
	return &draft{
		node: domain.Node{
			ID:       ref.ID,
			Kind:     domain.KindGroup,
			Name:     name,
			Slug:     ref.Path,
			Path:     parent.node.ChildPath(name),
			URL:      ref.WebURL,
			Archived: ref.Archived,
		},
		order: order,
	}
}

func newRepoNode(parent *domain.Node, ref driven.RepoRef, cfg domain.Config) *domain.Node {
	name := cfg.Naming.Pick(ref.Name, ref.Path)
	return &domain.Node{
		ID:       ref.ID,
		Kind:     domain.KindRepository,
		Name:     name,
		Slug:     ref.Path,
		Path:     parent.ChildPath(name),
		URL:      CloneURL(ref, cfg),
		HTTPURL:  ref.HTTPURL,
		SSHURL:   ref.SSHURL,
		Archived: ref.Archived,
		Shared:   ref.Shared,
	}
}

func sortDiscoveryErrors(errs []domain.DiscoveryError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Op < errs[j].Op
	})
}
