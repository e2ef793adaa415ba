package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quangdm/mpath/internal/core/domain"
)

const (
	defaultStream = "mpath:events"
	defaultMaxLen = 10000
)

type event struct {
	kind   string
	head   string
	path   string
	status string
}

// EventSink appends routing events to a capped Redis stream. Writes are
// decoupled from the hot path through a buffered channel; events are
// dropped rather than ever blocking routing.
type EventSink struct {
	rdb    *redis.Client
	stream string
	maxLen int64

	events chan event
	stop   chan struct{}
	done   chan struct{}
}

// NewEventSink creates the sink and starts its writer goroutine.
func NewEventSink(client *Client, cfg Config) *EventSink {
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	s := &EventSink{
		rdb:    client.rdb,
		stream: stream,
		maxLen: maxLen,
		events: make(chan event, 256),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.writer()
	return s
}

// Close stops the writer after flushing buffered events.
func (s *EventSink) Close() {
	close(s.stop)
	<-s.done
}

func (s *EventSink) NoPathRequeuing(head string) {
	s.offer(event{kind: "no_path_requeuing", head: head})
}

func (s *EventSink) NoPathFailing(head string) {
	s.offer(event{kind: "no_path_failing", head: head})
}

func (s *EventSink) Failover(head, path string, st domain.Status) {
	s.offer(event{kind: "failover", head: head, path: path, status: st.String()})
}

func (s *EventSink) offer(e event) {
	select {
	case s.events <- e:
	default:
		// Sink is behind; routing must not wait for observability.
	}
}

func (s *EventSink) writer() {
	defer close(s.done)
	for {
		select {
		case e := <-s.events:
			s.write(e)
		case <-s.stop:
			for {
				select {
				case e := <-s.events:
					s.write(e)
				default:
					return
				}
			}
		}
	}
}

func (s *EventSink) write(e event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	values := map[string]interface{}{
		"kind": e.kind,
		"head": e.head,
		"ts":   time.Now().UnixMilli(),
	}
	if e.path != "" {
		values["path"] = e.path
	}
	if e.status != "" {
		values["status"] = e.status
	}

	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		slog.Debug("failed to append routing event", "error", err)
	}
}
