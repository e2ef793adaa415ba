// Package fabric provides in-memory controllers and namespace devices
// implementing the host-stack side of the router: request execution,
// controller health, and recovery. It stands in for a real transport
// the way a loopback target would.
package fabric

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quangdm/mpath/internal/core/domain"
)

// Controller models one controller's connectivity to the subsystem.
// State transitions run asynchronously, like a transport reconnect.
type Controller struct {
	id         int
	state      atomic.Int32
	resetDelay time.Duration

	mu      sync.Mutex
	onState func(c *Controller, s domain.ControllerState)

	log *slog.Logger
}

// NewController creates a controller in the LIVE state. resetDelay is
// how long a recovery takes end to end.
func NewController(id int, resetDelay time.Duration) *Controller {
	c := &Controller{
		id:         id,
		resetDelay: resetDelay,
		log:        slog.Default().With("controller", id),
	}
	c.state.Store(int32(domain.StateLive))
	return c
}

// ID returns the controller instance id.
func (c *Controller) ID() int { return c.id }

// State returns the current connectivity state.
func (c *Controller) State() domain.ControllerState {
	return domain.ControllerState(c.state.Load())
}

// OnStateChange registers a hook invoked after every state transition.
func (c *Controller) OnStateChange(fn func(c *Controller, s domain.ControllerState)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// SetState forces a state transition and notifies the hook. Tests and
// the admin API use this to inject path failures.
func (c *Controller) SetState(s domain.ControllerState) {
	c.state.Store(int32(s))
	c.notify(s)
}

// Reset asks the controller to re-establish connectivity. It returns
// immediately; the controller passes through RESETTING and CONNECTING
// before going LIVE again. Repeated resets while one is in progress are
// ignored.
func (c *Controller) Reset() {
	for {
		cur := c.State()
		switch cur {
		case domain.StateResetting, domain.StateConnecting, domain.StateDeleting:
			return
		}
		if c.state.CompareAndSwap(int32(cur), int32(domain.StateResetting)) {
			break
		}
	}
	c.notify(domain.StateResetting)

	go func() {
		time.Sleep(c.resetDelay / 2)
		c.SetState(domain.StateConnecting)
		time.Sleep(c.resetDelay / 2)
		c.SetState(domain.StateLive)
	}()
}

func (c *Controller) notify(s domain.ControllerState) {
	c.log.Debug("controller state changed", "state", s.String())
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(c, s)
	}
}
