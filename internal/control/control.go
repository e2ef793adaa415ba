// Package control assembles the multipath router: it builds controllers
// and namespace heads from configuration, reacts to controller state
// changes, and exposes the admin and metrics endpoints.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quangdm/mpath/internal/core/config"
	"github.com/quangdm/mpath/internal/core/domain"
	"github.com/quangdm/mpath/internal/core/worker"
	"github.com/quangdm/mpath/internal/infra/fabric"
	redisclient "github.com/quangdm/mpath/internal/infra/redis"
	"github.com/quangdm/mpath/internal/mpath"
)

// Control is the main application struct managing the router lifecycle.
type Control struct {
	cfg    *config.AppConfig
	pool   *worker.Pool
	server *Server
	log    *slog.Logger

	heads    []*mpath.Head
	ctrls    []*fabric.Controller
	ctrlByID map[int]*fabric.Controller

	redisClient *redisclient.Client
	redisSink   *redisclient.EventSink
	workload    *Workload

	mu      sync.Mutex
	stopped bool
}

// New creates a Control with all dependencies initialized.
func New(cfg *config.AppConfig) (*Control, error) {
	if len(cfg.Subsystem.Controllers) == 0 {
		return nil, fmt.Errorf("subsystem has no controllers")
	}

	c := &Control{
		cfg:      cfg,
		pool:     worker.NewPool(cfg.Workers),
		log:      slog.Default(),
		ctrlByID: make(map[int]*fabric.Controller),
	}

	// Event sinks: always log, optionally mirror to Redis.
	var sink mpath.EventSink = mpath.NewLogSink(nil)
	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		c.redisClient = client
		c.redisSink = redisclient.NewEventSink(client, cfg.Redis)
		sink = mpath.MultiSink{sink, c.redisSink}
		slog.Info("Routing events mirrored to redis", "stream", cfg.Redis.Stream)
	}

	// Controllers.
	for _, cc := range cfg.Subsystem.Controllers {
		ctrl := fabric.NewController(cc.ID, cc.ResetDelay)
		c.ctrls = append(c.ctrls, ctrl)
		c.ctrlByID[cc.ID] = ctrl
	}

	// One head per namespace, one path per controller.
	headCfg := mpath.Config{
		Multipath:      cfg.Multipath,
		SubsysInstance: cfg.Subsystem.Instance,
		CMIC:           cfg.Subsystem.CMIC,
	}
	for _, ns := range cfg.Subsystem.Namespaces {
		head := mpath.NewHead(headCfg, ns.NSID, c.pool, sink)
		for _, cc := range cfg.Subsystem.Controllers {
			ctrl := c.ctrlByID[cc.ID]
			dev := fabric.NewDevice(ctrl, cc.Latency)
			name, _ := mpath.DiskName(cfg.Multipath, cfg.Subsystem.Instance,
				ctrl.ID(), ctrl.ID(), ns.NSID, head.HasDisk())
			path := mpath.NewPath(name, ctrl, dev)
			dev.Bind(func(req *domain.Request, st domain.Status) {
				head.Complete(path, req, st)
			})
			head.AddPath(path)
		}
		c.heads = append(c.heads, head)
		slog.Info("Namespace head created",
			"head", head.Name(),
			"paths", len(head.Paths()),
			"routed_node", head.HasDisk())
	}

	// A controller going live means buffered requests may make progress.
	for _, ctrl := range c.ctrls {
		ctrl.OnStateChange(func(ctrl *fabric.Controller, s domain.ControllerState) {
			if s == domain.StateLive {
				mpath.KickRequeueLists(ctrl, c.heads)
			}
		})
	}

	c.server = NewServer(c, cfg.Server.Port)
	if cfg.Workload.Enabled {
		c.workload = NewWorkload(c.heads, cfg.Workload.Interval)
	}

	return c, nil
}

// Start launches the worker pool, the admin server, and the optional
// demo workload.
func (c *Control) Start(ctx context.Context) error {
	c.pool.Start(ctx)

	go func() {
		if err := c.server.Start(); err != nil {
			slog.Error("Admin server stopped", "error", err)
		}
	}()
	slog.Info("Admin server listening", "port", c.cfg.Server.Port)

	if c.workload != nil {
		go c.workload.Run(ctx)
		slog.Info("Demo workload enabled", "interval", c.cfg.Workload.Interval)
	}

	return nil
}

// Stop tears everything down. Heads fail their buffered requests before
// teardown completes; nothing is silently dropped.
func (c *Control) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	if err := c.server.Stop(ctx); err != nil {
		slog.Warn("Admin server shutdown failed", "error", err)
	}
	for _, h := range c.heads {
		for _, p := range h.Paths() {
			h.RemovePath(p)
		}
		h.Close()
	}
	if c.redisSink != nil {
		c.redisSink.Close()
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			slog.Warn("Redis close failed", "error", err)
		}
	}
	slog.Info("Shutdown complete")
	return nil
}

// Heads returns the namespace heads.
func (c *Control) Heads() []*mpath.Head {
	return c.heads
}

// Controllers returns the subsystem's controllers.
func (c *Control) Controllers() []*fabric.Controller {
	return c.ctrls
}

// Controller returns a controller by id.
func (c *Control) Controller(id int) (*fabric.Controller, bool) {
	ctrl, ok := c.ctrlByID[id]
	return ctrl, ok
}
