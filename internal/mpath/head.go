package mpath

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/quangdm/mpath/internal/core/domain"
	"github.com/quangdm/mpath/internal/metrics"
)

// Controller is the owning controller of a path. The router only reads
// its health and may hint that it should attempt recovery; it never
// manages the controller's lifecycle.
type Controller interface {
	// ID returns the controller instance id (cntlid).
	ID() int

	// State returns the current connectivity state.
	State() domain.ControllerState

	// Reset asks the controller to attempt to restore connectivity.
	// It must not block.
	Reset()
}

// Device executes requests for one path. Submission is asynchronous;
// the completion arrives through Head.Complete.
type Device interface {
	Submit(req *domain.Request)
}

// Scheduler runs deferred work on a background execution context. The
// drain work must never run on the goroutine that scheduled it.
type Scheduler interface {
	Schedule(task func())
}

// Path is one controller's connection to a namespace.
type Path struct {
	name string
	ctrl Controller
	dev  Device
}

// NewPath creates a path backed by the given controller and device.
func NewPath(name string, ctrl Controller, dev Device) *Path {
	return &Path{name: name, ctrl: ctrl, dev: dev}
}

// Name returns the path's device node name.
func (p *Path) Name() string { return p.name }

// Controller returns the owning controller.
func (p *Path) Controller() Controller { return p.ctrl }

// Config holds construction-time settings for a head.
type Config struct {
	// Multipath enables namespace-level routing across controllers.
	Multipath bool

	// SubsysInstance is the subsystem instance number used for device
	// node naming.
	SubsysInstance int

	// CMIC is the subsystem's controller multipath capability byte;
	// bit 1 reports support for multiple controllers.
	CMIC uint8
}

// Head is the multipath-stable identity for a namespace reachable
// through several paths. The path list is copy-on-write and the cached
// current path is an atomic pointer, so selection never blocks.
type Head struct {
	instance int
	cfg      Config
	name     string
	hasDisk  bool

	sched  Scheduler
	events EventSink
	log    *slog.Logger

	mu      sync.Mutex // guards path list mutations
	paths   atomic.Pointer[[]*Path]
	current atomic.Pointer[Path]

	requeue requeueQueue
	pending atomic.Bool
	drainMu sync.Mutex // serializes drain runs
	closed  atomic.Bool
}

// NewHead creates the routing object for one namespace. A routed device
// node exists only when the subsystem supports multiple controllers and
// multipath is enabled; the head still routes either way.
func NewHead(cfg Config, instance int, sched Scheduler, events EventSink) *Head {
	if events == nil {
		events = NewLogSink(nil)
	}
	h := &Head{
		instance: instance,
		cfg:      cfg,
		hasDisk:  cfg.Multipath && cfg.CMIC&(1<<1) != 0,
		sched:    sched,
		events:   events,
		log:      slog.Default().With("head", instance),
	}
	h.name = HeadDiskName(cfg.SubsysInstance, instance)
	empty := make([]*Path, 0)
	h.paths.Store(&empty)
	return h
}

// Instance returns the head's namespace instance number.
func (h *Head) Instance() int { return h.instance }

// Name returns the routed device node name.
func (h *Head) Name() string { return h.name }

// HasDisk reports whether the head exposes a routed device node.
func (h *Head) HasDisk() bool { return h.hasDisk }

// Paths returns a snapshot of the current path list.
func (h *Head) Paths() []*Path {
	return *h.paths.Load()
}

// Current returns the cached path, which may be stale or nil.
func (h *Head) Current() *Path {
	return h.current.Load()
}

// Pending returns the requeue queue depth.
func (h *Head) Pending() int {
	return h.requeue.len()
}

// AddPath publishes a new path for the namespace and kicks the requeue
// work in case buffered requests can now make progress.
func (h *Head) AddPath(p *Path) {
	h.mu.Lock()
	cur := *h.paths.Load()
	next := make([]*Path, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, p)
	h.paths.Store(&next)
	h.mu.Unlock()

	h.log.Debug("path added", "path", p.Name(), "controller", p.ctrl.ID())
	h.KickRequeue()
}

// RemovePath unpublishes a path and invalidates the cache if it pointed
// at the removed path. In-flight requests on the path are the owning
// controller's responsibility to quiesce.
func (h *Head) RemovePath(p *Path) {
	h.mu.Lock()
	cur := *h.paths.Load()
	next := make([]*Path, 0, len(cur))
	for _, q := range cur {
		if q != p {
			next = append(next, q)
		}
	}
	h.paths.Store(&next)
	h.mu.Unlock()

	h.current.CompareAndSwap(p, nil)
	h.log.Debug("path removed", "path", p.Name())
	h.KickRequeue()
}

// HasController reports whether any of the head's paths belongs to the
// given controller.
func (h *Head) HasController(ctrl Controller) bool {
	for _, p := range h.Paths() {
		if p.ctrl == ctrl {
			return true
		}
	}
	return false
}

// findPath returns a live path, consulting the cache first. The fast
// path is a single atomic load; reselection happens only on a miss.
func (h *Head) findPath() *Path {
	p := h.current.Load()
	if p == nil || p.ctrl.State() != domain.StateLive {
		p = h.reselect()
	}
	return p
}

// reselect scans the path list in order and caches the first live path.
// The atomic store publishes the fully constructed path before any
// reader can observe it.
func (h *Head) reselect() *Path {
	for _, p := range h.Paths() {
		if p.ctrl.State() == domain.StateLive {
			h.current.Store(p)
			metrics.PathReselectsTotal.WithLabelValues(h.name).Inc()
			return p
		}
	}
	return nil
}

// Close tears the head down. Buffered requests are failed, not dropped;
// a drain already running completes first.
func (h *Head) Close() {
	h.closed.Store(true)

	// Wait out a concurrent drain so nothing re-buffers after the fail.
	h.drainMu.Lock()
	defer h.drainMu.Unlock()

	for _, req := range h.requeue.close() {
		req.Finish(0, ErrNoPath)
	}
	metrics.RequeueDepth.WithLabelValues(h.name).Set(0)
	h.log.Debug("head closed")
}
