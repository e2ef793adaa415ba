package mpath

import (
	"sync"
	"sync/atomic"

	"github.com/quangdm/mpath/internal/core/domain"
)

// fakeController is a controller with a settable state that records
// recovery requests.
type fakeController struct {
	id     int
	state  atomic.Int32
	resets atomic.Int32
}

func newFakeController(id int, s domain.ControllerState) *fakeController {
	c := &fakeController{id: id}
	c.state.Store(int32(s))
	return c
}

func (c *fakeController) ID() int { return c.id }

func (c *fakeController) State() domain.ControllerState {
	return domain.ControllerState(c.state.Load())
}

func (c *fakeController) Reset() { c.resets.Add(1) }

func (c *fakeController) setState(s domain.ControllerState) {
	c.state.Store(int32(s))
}

// fakeDevice records submissions without completing them.
type fakeDevice struct {
	mu        sync.Mutex
	submitted []*domain.Request
}

func (d *fakeDevice) Submit(req *domain.Request) {
	d.mu.Lock()
	d.submitted = append(d.submitted, req)
	d.mu.Unlock()
}

func (d *fakeDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.submitted)
}

func (d *fakeDevice) at(i int) *domain.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted[i]
}

// manualScheduler collects tasks and runs them on demand, so tests
// control exactly when drains happen.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *manualScheduler) Schedule(task func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
}

func (s *manualScheduler) pendingTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *manualScheduler) runAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func testConfig() Config {
	return Config{Multipath: true, SubsysInstance: 0, CMIC: 1 << 1}
}

func newTestHead(sched Scheduler) *Head {
	return NewHead(testConfig(), 1, sched, nil)
}
