package mpath

import (
	"testing"

	"github.com/quangdm/mpath/internal/core/domain"
)

func TestRequeuePreservesPushOrder(t *testing.T) {
	var q requeueQueue

	a := domain.NewRequest(domain.OpRead, 1, nil)
	b := domain.NewRequest(domain.OpRead, 2, nil)
	c := domain.NewRequest(domain.OpRead, 3, nil)
	for _, req := range []*domain.Request{a, b, c} {
		if !q.push(req) {
			t.Fatalf("push(%s) rejected", req.ID)
		}
	}

	got := q.drainAll()
	want := []*domain.Request{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("drainAll returned %d requests, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drainAll[%d] = %s, want %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestRequeueDrainIsIdempotent(t *testing.T) {
	var q requeueQueue

	q.push(domain.NewRequest(domain.OpRead, 0, nil))
	if got := q.drainAll(); len(got) != 1 {
		t.Fatalf("first drainAll returned %d requests, want 1", len(got))
	}
	if got := q.drainAll(); len(got) != 0 {
		t.Errorf("second drainAll returned %d requests, want 0", len(got))
	}
}

func TestRequeueCloseRejectsPush(t *testing.T) {
	var q requeueQueue

	parked := domain.NewRequest(domain.OpRead, 0, nil)
	q.push(parked)

	remaining := q.close()
	if len(remaining) != 1 || remaining[0] != parked {
		t.Fatalf("close did not return the parked request")
	}
	if q.push(domain.NewRequest(domain.OpRead, 0, nil)) {
		t.Error("push succeeded on a closed queue")
	}
	if q.len() != 0 {
		t.Errorf("queue depth = %d after close, want 0", q.len())
	}
}
