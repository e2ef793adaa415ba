package mpath

import (
	"errors"
	"testing"

	"github.com/quangdm/mpath/internal/core/domain"
)

func TestCompleteDeliversSuccess(t *testing.T) {
	h := newTestHead(&manualScheduler{})
	c := newFakeController(0, domain.StateLive)
	dev := &fakeDevice{}
	p := NewPath("nvme0c0n1", c, dev)
	h.AddPath(p)

	req := domain.NewRequest(domain.OpRead, 0, nil)
	h.Route(req)

	if got := h.Complete(p, req, domain.StatusSuccess); got != CompletionDelivered {
		t.Fatalf("Complete = %v, want delivered", got)
	}
	result := <-req.Done()
	if result.Err != nil {
		t.Errorf("request resolved with error %v", result.Err)
	}
}

func TestCompleteDeliversTerminalError(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)
	c := newFakeController(0, domain.StateLive)
	p := NewPath("nvme0c0n1", c, &fakeDevice{})
	h.AddPath(p)

	req := domain.NewRequest(domain.OpWrite, 0, []byte("x"))
	h.Route(req)
	resets := c.resets.Load()

	if got := h.Complete(p, req, domain.StatusInvalidField); got != CompletionDelivered {
		t.Fatalf("Complete = %v, want delivered", got)
	}

	result := <-req.Done()
	var statusErr *domain.StatusError
	if !errors.As(result.Err, &statusErr) {
		t.Fatalf("request resolved with %T, want StatusError", result.Err)
	}
	if statusErr.Status != domain.StatusInvalidField {
		t.Errorf("delivered status = %s, want invalid field", statusErr.Status)
	}
	if h.Pending() != 0 {
		t.Error("terminal error must not touch the requeue queue")
	}
	if c.resets.Load() != resets {
		t.Error("terminal error must not request controller recovery")
	}
}

func TestCompleteRequeuesPathFailure(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)
	c := newFakeController(0, domain.StateLive)
	dev := &fakeDevice{}
	p := NewPath("nvme0c0n1", c, dev)
	h.AddPath(p)
	sched.runAll() // consume the AddPath kick

	req := domain.NewRequest(domain.OpRead, 7, nil)
	h.Route(req)

	if got := h.Complete(p, req, domain.StatusHostPathError); got != CompletionRequeued {
		t.Fatalf("Complete = %v, want requeued", got)
	}
	if req.Finished() {
		t.Fatal("requeued request must not be resolved toward the caller")
	}
	if h.Pending() != 1 {
		t.Fatalf("requeue depth = %d, want 1", h.Pending())
	}
	if c.resets.Load() != 1 {
		t.Errorf("controller resets = %d, want 1", c.resets.Load())
	}
	if sched.pendingTasks() != 1 {
		t.Fatalf("scheduled drains = %d, want 1", sched.pendingTasks())
	}

	// Drain resubmits through routing with the target reset.
	sched.runAll()
	if dev.count() != 2 {
		t.Fatalf("device saw %d submissions, want 2", dev.count())
	}
	if got := dev.at(1); got != req {
		t.Error("drained request was not resubmitted")
	}
	if req.Target != p.Name() {
		t.Errorf("resubmitted target = %q, want %q", req.Target, p.Name())
	}
}

func TestDrainResubmitsInPushOrder(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)
	c := newFakeController(0, domain.StateDead)
	dev := &fakeDevice{}
	h.AddPath(NewPath("nvme0c0n1", c, dev))
	sched.runAll()

	a := domain.NewRequest(domain.OpRead, 1, nil)
	b := domain.NewRequest(domain.OpRead, 2, nil)
	cc := domain.NewRequest(domain.OpRead, 3, nil)
	for _, req := range []*domain.Request{a, b, cc} {
		if res := h.Route(req); res.Outcome != OutcomeBuffered {
			t.Fatalf("Route outcome = %s, want buffered", res.Outcome)
		}
	}

	c.setState(domain.StateLive)
	h.KickRequeue()
	sched.runAll()

	if dev.count() != 3 {
		t.Fatalf("device saw %d submissions, want 3", dev.count())
	}
	for i, want := range []*domain.Request{a, b, cc} {
		if dev.at(i) != want {
			t.Errorf("submission %d = %s, want %s", i, dev.at(i).ID, want.ID)
		}
	}
}

func TestDrainRebuffersWhileNoPathIsLive(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)
	h.AddPath(NewPath("nvme0c0n1", newFakeController(0, domain.StateDead), &fakeDevice{}))
	sched.runAll()

	req := domain.NewRequest(domain.OpRead, 0, nil)
	h.Route(req)

	h.KickRequeue()
	sched.runAll()

	if req.Finished() {
		t.Fatal("request must stay buffered, not fail")
	}
	if h.Pending() != 1 {
		t.Errorf("requeue depth = %d after fruitless drain, want 1", h.Pending())
	}
}

func TestKickRequeueCoalesces(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)

	h.KickRequeue()
	h.KickRequeue()
	h.KickRequeue()

	if sched.pendingTasks() != 1 {
		t.Errorf("scheduled drains = %d, want 1", sched.pendingTasks())
	}
}

func TestCloseFailsBufferedRequests(t *testing.T) {
	sched := &manualScheduler{}
	h := newTestHead(sched)
	h.AddPath(NewPath("nvme0c0n1", newFakeController(0, domain.StateDead), &fakeDevice{}))

	req := domain.NewRequest(domain.OpRead, 0, nil)
	if res := h.Route(req); res.Outcome != OutcomeBuffered {
		t.Fatalf("Route outcome = %s, want buffered", res.Outcome)
	}

	h.Close()

	result := <-req.Done()
	if result.Err != ErrNoPath {
		t.Errorf("buffered request resolved with %v on teardown, want ErrNoPath", result.Err)
	}
}

func TestKickRequeueListsMatchesController(t *testing.T) {
	sched1 := &manualScheduler{}
	sched2 := &manualScheduler{}
	h1 := NewHead(testConfig(), 1, sched1, nil)
	h2 := NewHead(testConfig(), 2, sched2, nil)

	c1 := newFakeController(0, domain.StateLive)
	c2 := newFakeController(1, domain.StateLive)
	h1.AddPath(NewPath("nvme0c0n1", c1, &fakeDevice{}))
	h2.AddPath(NewPath("nvme0c1n2", c2, &fakeDevice{}))
	sched1.runAll()
	sched2.runAll()

	KickRequeueLists(c1, []*Head{h1, h2})

	if sched1.pendingTasks() != 1 {
		t.Errorf("head with path on c1 was not kicked")
	}
	if sched2.pendingTasks() != 0 {
		t.Errorf("head without path on c1 was kicked")
	}
}
