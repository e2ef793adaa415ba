package fabric

import (
	"sync"
	"time"

	"github.com/quangdm/mpath/internal/core/domain"
)

// CompleteFunc delivers a completion back to the routing layer.
type CompleteFunc func(req *domain.Request, st domain.Status)

// Device executes requests for one path against an in-memory namespace.
// Completions are delivered asynchronously through the bound callback.
// A request submitted while the controller is not live completes with a
// host pathing error, like a fabrics command timing out on a dead
// connection.
type Device struct {
	ctrl    *Controller
	latency time.Duration

	mu       sync.Mutex
	complete CompleteFunc
	inject   []domain.Status
}

// NewDevice creates a device owned by the given controller.
func NewDevice(ctrl *Controller, latency time.Duration) *Device {
	return &Device{ctrl: ctrl, latency: latency}
}

// Bind sets the completion callback. Must be called before Submit.
func (d *Device) Bind(fn CompleteFunc) {
	d.mu.Lock()
	d.complete = fn
	d.mu.Unlock()
}

// InjectStatus queues a status to be returned by upcoming completions,
// one per submission, in order. Used to simulate device errors.
func (d *Device) InjectStatus(statuses ...domain.Status) {
	d.mu.Lock()
	d.inject = append(d.inject, statuses...)
	d.mu.Unlock()
}

// Submit executes the request asynchronously.
func (d *Device) Submit(req *domain.Request) {
	go func() {
		if d.latency > 0 {
			time.Sleep(d.latency)
		}
		d.finish(req)
	}()
}

func (d *Device) finish(req *domain.Request) {
	d.mu.Lock()
	fn := d.complete
	st := domain.StatusSuccess
	if len(d.inject) > 0 {
		st = d.inject[0]
		d.inject = d.inject[1:]
	}
	d.mu.Unlock()

	if d.ctrl.State() != domain.StateLive {
		st = domain.StatusHostPathError
	}
	if fn != nil {
		fn(req, st)
	}
}
