package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/repotree/internal/core/domain"
	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

// --- mockRemoteAPI: an in-memory group hierarchy ---

type mockRemoteAPI struct {
	mu        sync.Mutex
	top       []driven.GroupRef
	subgroups map[string][]driven.GroupRef
	details   map[string]*driven.GroupDetail
	repos     map[string][]driven.RepoRef
	userRepos map[string][]driven.RepoRef
	user      string
	// failures maps "op:id" to the error returned by that call.
	failures map[string]error
	delay    time.Duration

	calls          atomic.Int64
	inflight       atomic.Int64
	maxInflight    atomic.Int64
	subgroupCalls  map[string]int
	sharedRequests []bool
}

func newMockRemoteAPI() *mockRemoteAPI {
	return &mockRemoteAPI{
		subgroups:     make(map[string][]driven.GroupRef),
		details:       make(map[string]*driven.GroupDetail),
		repos:         make(map[string][]driven.RepoRef),
		userRepos:     make(map[string][]driven.RepoRef),
		failures:      make(map[string]error),
		subgroupCalls: make(map[string]int),
	}
}

// addGroup registers a group. An empty parent makes it top-level.
func (m *mockRemoteAPI) addGroup(parent, id, name string, archived bool) {
	ref := driven.GroupRef{ID: id, ParentID: parent, Name: name, Path: name, FullPath: name, WebURL: "https://host/" + name, Archived: archived}
	if parent == "" {
		m.top = append(m.top, ref)
	} else {
		shallow := ref
		shallow.Archived = false
		m.subgroups[parent] = append(m.subgroups[parent], shallow)
	}
	m.details[id] = &driven.GroupDetail{GroupRef: ref}
}

func (m *mockRemoteAPI) addRepo(group, id, name string, archived bool) {
	m.repos[group] = append(m.repos[group], driven.RepoRef{
		ID:       id,
		Name:     name,
		Path:     name,
		HTTPURL:  "https://host/" + name + ".git",
		SSHURL:   "git@host:" + name + ".git",
		Archived: archived,
	})
}

func (m *mockRemoteAPI) fail(op, id string, err error) {
	m.failures[op+":"+id] = err
}

func (m *mockRemoteAPI) enter(ctx context.Context, op, id string) error {
	m.calls.Add(1)
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		cur := m.maxInflight.Load()
		if n <= cur || m.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[op+":"+id]
}

func (m *mockRemoteAPI) ListTopGroups(ctx context.Context, _ string) ([]driven.GroupRef, error) {
	if err := m.enter(ctx, "top", ""); err != nil {
		return nil, err
	}
	return m.top, nil
}

func (m *mockRemoteAPI) ListSubgroups(ctx context.Context, groupID string) ([]driven.GroupRef, error) {
	m.mu.Lock()
	m.subgroupCalls[groupID]++
	m.mu.Unlock()
	if err := m.enter(ctx, "subgroups", groupID); err != nil {
		return nil, err
	}
	return m.subgroups[groupID], nil
}

func (m *mockRemoteAPI) GetGroupDetail(ctx context.Context, groupID string) (*driven.GroupDetail, error) {
	if err := m.enter(ctx, "detail", groupID); err != nil {
		return nil, err
	}
	d, ok := m.details[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
	}
	return d, nil
}

func (m *mockRemoteAPI) ListRepositories(ctx context.Context, groupID string, includeShared bool, _ domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	m.mu.Lock()
	m.sharedRequests = append(m.sharedRequests, includeShared)
	m.mu.Unlock()
	if err := m.enter(ctx, "repos", groupID); err != nil {
		return nil, err
	}
	return m.repos[groupID], nil
}

func (m *mockRemoteAPI) ListUserRepositories(ctx context.Context, username string, _ domain.ArchivedPolicy) ([]driven.RepoRef, error) {
	if err := m.enter(ctx, "user", username); err != nil {
		return nil, err
	}
	return m.userRepos[username], nil
}

func (m *mockRemoteAPI) CurrentUser(ctx context.Context) (string, error) {
	if err := m.enter(ctx, "me", ""); err != nil {
		return "", err
	}
	return m.user, nil
}

// --- mockVCS: creates directories instead of cloning ---

type mockVCS struct {
	mu        sync.Mutex
	checkouts map[string]bool
	cloned    []string
	pulled    []string
	cloneOpts []driven.CloneOptions
	pullOpts  []driven.PullOptions
	failURLs  map[string]error
	failPaths map[string]error
	delay     time.Duration

	inflight    atomic.Int64
	maxInflight atomic.Int64
}

func newMockVCS() *mockVCS {
	return &mockVCS{
		checkouts: make(map[string]bool),
		failURLs:  make(map[string]error),
		failPaths: make(map[string]error),
	}
}

func (v *mockVCS) track() func() {
	n := v.inflight.Add(1)
	for {
		cur := v.maxInflight.Load()
		if n <= cur || v.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}
	if v.delay > 0 {
		time.Sleep(v.delay)
	}
	return func() { v.inflight.Add(-1) }
}

func (v *mockVCS) IsValidCheckout(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.checkouts[path]
}

func (v *mockVCS) Clone(_ context.Context, url, path string, opts driven.CloneOptions) error {
	defer v.track()()
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.failURLs[url]; err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	v.checkouts[path] = true
	v.cloned = append(v.cloned, path)
	v.cloneOpts = append(v.cloneOpts, opts)
	return nil
}

func (v *mockVCS) Pull(_ context.Context, path string, opts driven.PullOptions) error {
	defer v.track()()
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.failPaths[path]; err != nil {
		return err
	}
	v.pulled = append(v.pulled, path)
	v.pullOpts = append(v.pullOpts, opts)
	return nil
}

// --- recordingProgress ---

type recordingProgress struct {
	mu        sync.Mutex
	discovery []int
	started   []string
	ended     []domain.SyncResult
}

func (p *recordingProgress) OnDiscoveryProgress(completed, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discovery = append(p.discovery, completed)
}

func (p *recordingProgress) OnSyncStart(a domain.SyncAction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, a.NodePath)
}

func (p *recordingProgress) OnSyncEnd(r domain.SyncResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, r)
}

// --- fakeClock: manual time for the rate limiter ---

type fakeWaiter struct {
	at time.Time
	ch chan time.Time
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []fakeWaiter
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, fakeWaiter{at: c.now.Add(d), ch: ch})
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	kept := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
			continue
		}
		kept = append(kept, w)
	}
	c.waiters = kept
}

func (c *fakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
