package mpath

import (
	"errors"
	"time"

	"github.com/quangdm/mpath/internal/core/domain"
	"github.com/quangdm/mpath/internal/metrics"
)

// ErrNoPath is returned to the caller when a namespace has no path at
// all, or is torn down with requests still buffered.
var ErrNoPath = errors.New("mpath: no available path")

// Outcome discriminates the result of a routing decision.
type Outcome int

const (
	// OutcomeForwarded means the request was handed to a live path.
	OutcomeForwarded Outcome = iota

	// OutcomeBuffered means no path is live right now; the request sits
	// in the requeue queue until one recovers.
	OutcomeBuffered

	// OutcomeFailed means the request was resolved with an I/O error.
	OutcomeFailed
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeBuffered:
		return "buffered"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RouteResult is the discriminated outcome of Route.
type RouteResult struct {
	Outcome Outcome
	Path    *Path
	Err     error
}

// Route sends a request toward a live path, buffers it if paths exist
// but none is live, or fails it if the namespace has no paths at all.
// It never blocks on I/O completion; the only lock it can take is the
// requeue queue's, and only briefly.
func (h *Head) Route(req *domain.Request) RouteResult {
	if p := h.findPath(); p != nil {
		req.Flags |= domain.FlagMultipath
		req.Target = p.Name()
		req.Submitted = time.Now()
		metrics.RouteTotal.WithLabelValues(h.name, OutcomeForwarded.String()).Inc()
		p.dev.Submit(req)
		return RouteResult{Outcome: OutcomeForwarded, Path: p}
	}

	if len(h.Paths()) != 0 {
		if h.requeue.push(req) {
			h.events.NoPathRequeuing(h.name)
			metrics.RouteTotal.WithLabelValues(h.name, OutcomeBuffered.String()).Inc()
			metrics.RequeueDepth.WithLabelValues(h.name).Set(float64(h.requeue.len()))
			return RouteResult{Outcome: OutcomeBuffered}
		}
		// Head is tearing down; fall through and fail the request.
	}

	h.events.NoPathFailing(h.name)
	metrics.RouteTotal.WithLabelValues(h.name, OutcomeFailed.String()).Inc()
	req.Finish(0, ErrNoPath)
	return RouteResult{Outcome: OutcomeFailed, Err: ErrNoPath}
}
