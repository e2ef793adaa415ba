package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quangdm/mpath/internal/core/config"
	"github.com/quangdm/mpath/internal/core/domain"
)

func testControl(t *testing.T) *Control {
	t.Helper()
	cfg := &config.AppConfig{
		Server:    config.ServerConfig{Port: 0},
		Multipath: true,
		Workers:   1,
		Subsystem: config.SubsystemConfig{
			Instance: 0,
			CMIC:     1 << 1,
			Controllers: []config.ControllerConfig{
				{ID: 0, ResetDelay: 10 * time.Millisecond},
				{ID: 1, ResetDelay: 10 * time.Millisecond},
			},
			Namespaces: []config.NamespaceConfig{{NSID: 1}},
		},
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func do(c *Control, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c.server.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestNewBuildsTopology(t *testing.T) {
	c := testControl(t)

	heads := c.Heads()
	if len(heads) != 1 {
		t.Fatalf("heads = %d, want 1", len(heads))
	}
	if got := len(heads[0].Paths()); got != 2 {
		t.Errorf("paths = %d, want 2", got)
	}
	if !heads[0].HasDisk() {
		t.Error("head should have a routed node with multipath + CMIC set")
	}
	if len(c.Controllers()) != 2 {
		t.Errorf("controllers = %d, want 2", len(c.Controllers()))
	}
}

func TestNewRejectsEmptySubsystem(t *testing.T) {
	_, err := New(&config.AppConfig{})
	if err == nil {
		t.Error("New accepted a subsystem without controllers")
	}
}

func TestHeadsEndpoint(t *testing.T) {
	c := testControl(t)

	rec := do(c, http.MethodGet, "/v1/heads")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var heads []HeadInfo
	if err := json.NewDecoder(rec.Body).Decode(&heads); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(heads) != 1 {
		t.Fatalf("heads = %d, want 1", len(heads))
	}
	if heads[0].Name != "nvme0n1" {
		t.Errorf("head name = %q, want nvme0n1", heads[0].Name)
	}
	if len(heads[0].Paths) != 2 {
		t.Errorf("paths = %d, want 2", len(heads[0].Paths))
	}
}

func TestResetEndpoint(t *testing.T) {
	c := testControl(t)

	if rec := do(c, http.MethodPost, "/v1/controllers/0/reset"); rec.Code != http.StatusAccepted {
		t.Errorf("reset status = %d, want 202", rec.Code)
	}
	if rec := do(c, http.MethodPost, "/v1/controllers/9/reset"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown controller status = %d, want 404", rec.Code)
	}
}

func TestHealthzReflectsPathState(t *testing.T) {
	c := testControl(t)

	if rec := do(c, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d with live controllers, want 200", rec.Code)
	}

	for _, ctrl := range c.Controllers() {
		ctrl.SetState(domain.StateDead)
	}
	if rec := do(c, http.MethodGet, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz = %d with all controllers dead, want 503", rec.Code)
	}
}
