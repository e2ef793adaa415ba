package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Pool runs deferred tasks on a fixed set of background goroutines.
// Requeue drains are scheduled here so they never run on the goroutine
// that produced the completion that triggered them.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan func(), 256),
	}
}

// Start launches the workers. They exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
	slog.Debug("Worker pool started", "workers", p.workers)
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Schedule enqueues a task. It never blocks the caller: if the queue is
// full the task runs on its own goroutine instead.
func (p *Pool) Schedule(task func()) {
	select {
	case p.tasks <- task:
	default:
		go task()
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}
