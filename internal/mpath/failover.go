package mpath

import (
	"time"

	"github.com/quangdm/mpath/internal/core/domain"
	"github.com/quangdm/mpath/internal/metrics"
)

// CompletionOutcome discriminates the result of Complete.
type CompletionOutcome int

const (
	// CompletionDelivered means the request was resolved toward its
	// submitter, successfully or with a terminal error.
	CompletionDelivered CompletionOutcome = iota

	// CompletionRequeued means the request was detached for retry on
	// another path. The path-level operation is acknowledged as done;
	// the request itself is in flight again.
	CompletionRequeued
)

// Complete is the completion hook for requests submitted through Route.
// Terminal statuses are delivered to the caller unchanged; anything
// classified as a path failure is moved to the requeue queue, recovery
// is requested on the path's controller, and a drain is scheduled.
func (h *Head) Complete(p *Path, req *domain.Request, st domain.Status) CompletionOutcome {
	req.Status = st
	metrics.SubmitLatency.WithLabelValues(h.name, p.Name()).
		Observe(time.Since(req.Submitted).Seconds())

	if st&domain.StatusMask == domain.StatusSuccess {
		req.Finish(st, nil)
		return CompletionDelivered
	}
	if !NeedsFailover(req) {
		req.Finish(st, &domain.StatusError{Status: st})
		return CompletionDelivered
	}

	h.failover(p, req)
	return CompletionRequeued
}

// failover detaches the request from its failed path and parks it for
// resubmission. The caller acknowledges the path-level operation as
// successful; the request is not resolved.
func (h *Head) failover(p *Path, req *domain.Request) {
	st := req.Status
	req.Target = ""
	req.Status = 0

	if !h.requeue.push(req) {
		// Head already tearing down; resolve instead of dropping.
		req.Finish(0, ErrNoPath)
		return
	}
	h.events.Failover(h.name, p.Name(), st)
	metrics.FailoverTotal.WithLabelValues(h.name, st.String()).Inc()
	metrics.RequeueDepth.WithLabelValues(h.name).Set(float64(h.requeue.len()))

	p.ctrl.Reset()
	h.KickRequeue()
}

// KickRequeue schedules the drain work unless one is already pending.
func (h *Head) KickRequeue() {
	if h.sched == nil || h.closed.Load() {
		return
	}
	if h.pending.CompareAndSwap(false, true) {
		h.sched.Schedule(h.requeueWork)
	}
}

// requeueWork drains the requeue queue and pushes every buffered
// request back through Route. Targets are reset first so routing picks
// a path from the head again. A request may land right back in the
// queue if no path is live yet; the next kick retries it.
func (h *Head) requeueWork() {
	h.drainMu.Lock()
	defer h.drainMu.Unlock()

	h.pending.Store(false)
	reqs := h.requeue.drainAll()
	if len(reqs) == 0 {
		return
	}
	metrics.DrainRunsTotal.WithLabelValues(h.name).Inc()
	metrics.RequeueDepth.WithLabelValues(h.name).Set(0)

	for _, req := range reqs {
		req.Target = ""
		h.Route(req)
	}
}

// KickRequeueLists schedules drain work for every head with a path on
// the given controller, typically after the controller changed state.
func KickRequeueLists(ctrl Controller, heads []*Head) {
	for _, h := range heads {
		if h.HasController(ctrl) {
			h.KickRequeue()
		}
	}
}
