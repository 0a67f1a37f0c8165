package services

import (
	"sync"

	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

type taskKind int

const (
	taskListSubgroups taskKind = iota
	taskListRepositories
	taskHydrateGroup
)

func (k taskKind) String() string {
	switch k {
	case taskListSubgroups:
		return "list subgroups"
	case taskListRepositories:
		return "list repositories"
	case taskHydrateGroup:
		return "get group"
	default:
		return "unknown"
	}
}

// fetchTask is one unit of discovery work.
type fetchTask struct {
	kind taskKind
	// node is the group being expanded, or the parent of the group being hydrated.
	node *draft
	// ref and order identify the subgroup to hydrate.
	ref   driven.GroupRef
	order int
}

// taskQueue is an unbounded FIFO shared by the discovery workers.
// It drains when no task is queued or running.
type taskQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []fetchTask
	pending   int // queued plus running
	closed    bool
	enqueued  int
	completed int
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push adds a task. It returns false once the queue is closed.
func (q *taskQueue) push(t fetchTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, t)
	q.pending++
	q.enqueued++
	q.cond.Signal()
	return true
}

// pop blocks until a task is available. It returns false when the queue
// is closed or fully drained.
func (q *taskQueue) pop() (fetchTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed && q.pending > 0 {
		q.cond.Wait()
	}
	if q.closed || len(q.items) == 0 {
		return fetchTask{}, false
	}
	t := q.items[0]
	q.items[0] = fetchTask{}
	q.items = q.items[1:]
	return t, true
}

// done marks a popped task finished and returns the progress counters.
func (q *taskQueue) done() (completed, enqueued int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending--
	q.completed++
	if q.pending == 0 {
		q.cond.Broadcast()
	}
	return q.completed, q.enqueued
}

// close wakes all workers and rejects further pushes.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
