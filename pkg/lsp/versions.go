package lsp

import (
	"context"
	"sync"
)

// checkedVersionQueue lets handlers that need the Latest freshness policy
// suspend until an analysis at or above a given version completes for a
// specific file. Waiters register interest keyed by (file, version); the
// dispatcher notifies after updating the cache. Completions for other files
// or older versions never wake a waiter.
//
// The wait is unbounded in principle; callers needing a hard bound supply a
// context deadline.
type checkedVersionQueue struct {
	mu       sync.Mutex
	versions map[string]int32
	queue    map[string]map[int32]chan struct{}
}

func newCheckedVersionQueue() *checkedVersionQueue {
	return &checkedVersionQueue{
		versions: make(map[string]int32),
		queue:    make(map[string]map[int32]chan struct{}),
	}
}

// Wait blocks until a check for file at version or newer has completed, or
// ctx is done.
func (q *checkedVersionQueue) Wait(ctx context.Context, file string, version int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file = NormalizePath(file)
	q.mu.Lock()
	if checked, ok := q.versions[file]; ok && checked >= version {
		q.mu.Unlock()
		return nil
	}
	if _, ok := q.queue[file]; !ok {
		q.queue[file] = make(map[int32]chan struct{})
	}
	qc, ok := q.queue[file][version]
	if !ok {
		qc = make(chan struct{})
		q.queue[file][version] = qc
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-qc:
		return nil
	}
}

// Notify records that a check completed for file at version and wakes every
// waiter whose requested version is satisfied by it. A NoVersion notification
// wakes all waiters for the file.
func (q *checkedVersionQueue) Notify(file string, version int32) {
	file = NormalizePath(file)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.versions[file] = version
	for v, qc := range q.queue[file] {
		if version == NoVersion || v <= version {
			delete(q.queue[file], v)
			close(qc)
		}
	}
}

// Forget drops the recorded version for a file and wakes its waiters.
// Version numbers restart when a file is reopened, so a record from a
// closed session must never satisfy a later wait.
func (q *checkedVersionQueue) Forget(file string) {
	file = NormalizePath(file)
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.versions, file)
	for v, qc := range q.queue[file] {
		delete(q.queue[file], v)
		close(qc)
	}
	delete(q.queue, file)
}
