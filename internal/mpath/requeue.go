package mpath

import (
	"sync"

	"github.com/quangdm/mpath/internal/core/domain"
)

// requeueQueue buffers requests that lost their path until the drain
// work resubmits them. The lock is held only for list manipulation,
// never across a routing decision or a recovery call.
type requeueQueue struct {
	mu     sync.Mutex
	reqs   []*domain.Request
	closed bool
}

// push appends a request in arrival order. It returns false if the
// queue has been closed for teardown, in which case the caller owns the
// request and must resolve it.
func (q *requeueQueue) push(req *domain.Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.reqs = append(q.reqs, req)
	return true
}

// drainAll detaches and returns the entire queue contents in push
// order. The queue is empty immediately after.
func (q *requeueQueue) drainAll() []*domain.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	reqs := q.reqs
	q.reqs = nil
	return reqs
}

// len returns the current queue depth.
func (q *requeueQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.reqs)
}

// close detaches any remaining requests and rejects future pushes.
func (q *requeueQueue) close() []*domain.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	reqs := q.reqs
	q.reqs = nil
	return reqs
}
