// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"sync"

	"github.com/pdiddy/paperdesk/internal/apperr"
)

// taskQueue runs submitted closures strictly one at a time in submission
// order. This is the store's lost-update guard: two concurrent mutations
// can never both load a stale document, because only one mutation is ever
// in flight. A caller awaits only its own task's completion, not the whole
// queue; the queue drains continuously as long as tasks remain.
type taskQueue struct {
	tasks chan queuedTask

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

type queuedTask struct {
	run    func() error
	result chan error
}

func newTaskQueue(buffer int) *taskQueue {
	q := &taskQueue{
		tasks: make(chan queuedTask, buffer),
		done:  make(chan struct{}),
	}
	go q.drain()
	return q
}

func (q *taskQueue) drain() {
	defer close(q.done)
	for t := range q.tasks {
		t.result <- t.run()
	}
}

// Submit enqueues fn and blocks until it has run, returning its error.
// A failed task never corrupts the queue: the worker moves on to the next
// task regardless of the outcome.
func (q *taskQueue) Submit(fn func() error) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return apperr.New(apperr.KindStorage, "store.queue", "store is closed")
	}
	t := queuedTask{run: fn, result: make(chan error, 1)}
	q.tasks <- t
	q.mu.Unlock()

	return <-t.result
}

// Close stops accepting tasks and waits for the queue to drain. Tasks
// already submitted run to completion; writes are never abandoned
// mid-flight.
func (q *taskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	<-q.done
}
