package mpath

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/quangdm/mpath/internal/core/domain"
)

// EventSink receives routing events for observability. Implementations
// must not block: sinks are called from the routing hot path.
type EventSink interface {
	// NoPathRequeuing fires when a request is buffered because paths
	// exist but none is live.
	NoPathRequeuing(head string)

	// NoPathFailing fires when a request is failed because the head has
	// no paths at all.
	NoPathFailing(head string)

	// Failover fires when a completed request is moved to the requeue
	// queue instead of being delivered.
	Failover(head, path string, st domain.Status)
}

// LogSink logs events through slog, rate limited so a path outage does
// not flood the log with one line per request.
type LogSink struct {
	log     *slog.Logger
	requeue *rate.Limiter
	fail    *rate.Limiter
}

// NewLogSink creates a LogSink. A nil logger uses the default.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{
		log:     log,
		requeue: rate.NewLimiter(rate.Every(time.Second), 3),
		fail:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

func (s *LogSink) NoPathRequeuing(head string) {
	if s.requeue.Allow() {
		s.log.Warn("no path available - requeuing I/O", "head", head)
	}
}

func (s *LogSink) NoPathFailing(head string) {
	if s.fail.Allow() {
		s.log.Warn("no path - failing I/O", "head", head)
	}
}

func (s *LogSink) Failover(head, path string, st domain.Status) {
	s.log.Debug("failing over request",
		"head", head,
		"path", path,
		"status", st.String())
}

// MultiSink fans events out to several sinks.
type MultiSink []EventSink

func (m MultiSink) NoPathRequeuing(head string) {
	for _, s := range m {
		s.NoPathRequeuing(head)
	}
}

func (m MultiSink) NoPathFailing(head string) {
	for _, s := range m {
		s.NoPathFailing(head)
	}
}

func (m MultiSink) Failover(head, path string, st domain.Status) {
	for _, s := range m {
		s.Failover(head, path, st)
	}
}
