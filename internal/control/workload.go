package control

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/quangdm/mpath/internal/core/domain"
	"github.com/quangdm/mpath/internal/mpath"
)

// Workload issues synthetic reads and writes against the namespace
// heads so a standalone daemon has traffic to route. Disabled unless
// configured on.
type Workload struct {
	heads    []*mpath.Head
	interval time.Duration
}

// NewWorkload creates a workload generator over the given heads.
func NewWorkload(heads []*mpath.Head, interval time.Duration) *Workload {
	return &Workload{heads: heads, interval: interval}
}

// Run issues requests until ctx is cancelled.
func (w *Workload) Run(ctx context.Context) {
	if len(w.heads) == 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.issue(ctx)
		}
	}
}

func (w *Workload) issue(ctx context.Context) {
	head := w.heads[rand.Intn(len(w.heads))]
	op := domain.OpRead
	var data []byte
	if rand.Intn(2) == 0 {
		op = domain.OpWrite
		data = make([]byte, 4096)
	}
	req := domain.NewRequest(op, uint64(rand.Intn(1<<20)), data)

	res := head.Route(req)
	if res.Outcome != mpath.OutcomeForwarded {
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if result, err := req.Wait(waitCtx); err == nil && result.Err != nil {
		slog.Debug("workload request failed",
			"head", head.Name(),
			"request", req.ID,
			"error", result.Err)
	}
}
