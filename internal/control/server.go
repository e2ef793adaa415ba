package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quangdm/mpath/internal/core/domain"
)

// Server exposes the admin API and Prometheus metrics.
type Server struct {
	ctl    *Control
	server *http.Server
}

// PathInfo describes one path of a head in API responses.
type PathInfo struct {
	Name       string `json:"name"`
	Controller int    `json:"controller"`
	State      string `json:"state"`
}

// HeadInfo describes one namespace head in API responses.
type HeadInfo struct {
	Name       string     `json:"name"`
	Instance   int        `json:"instance"`
	RoutedNode bool       `json:"routed_node"`
	Current    string     `json:"current_path,omitempty"`
	Requeued   int        `json:"requeued"`
	Paths      []PathInfo `json:"paths"`
}

// ControllerInfo describes one controller in API responses.
type ControllerInfo struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

// NewServer creates the admin server.
func NewServer(ctl *Control, port int) *Server {
	r := mux.NewRouter()
	s := &Server{
		ctl: ctl,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
	}

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/heads", s.handleHeads).Methods(http.MethodGet)
	r.HandleFunc("/v1/controllers", s.handleControllers).Methods(http.MethodGet)
	r.HandleFunc("/v1/controllers/{id}/reset", s.handleReset).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// Healthy as long as at least one head can forward I/O.
	for _, h := range s.ctl.Heads() {
		for _, p := range h.Paths() {
			if p.Controller().State() == domain.StateLive {
				writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
				return
			}
		}
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no live path"})
}

func (s *Server) handleHeads(w http.ResponseWriter, r *http.Request) {
	heads := s.ctl.Heads()
	out := make([]HeadInfo, 0, len(heads))
	for _, h := range heads {
		info := HeadInfo{
			Name:       h.Name(),
			Instance:   h.Instance(),
			RoutedNode: h.HasDisk(),
			Requeued:   h.Pending(),
		}
		if cur := h.Current(); cur != nil {
			info.Current = cur.Name()
		}
		for _, p := range h.Paths() {
			info.Paths = append(info.Paths, PathInfo{
				Name:       p.Name(),
				Controller: p.Controller().ID(),
				State:      p.Controller().State().String(),
			})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleControllers(w http.ResponseWriter, r *http.Request) {
	ctrls := s.ctl.Controllers()
	out := make([]ControllerInfo, 0, len(ctrls))
	for _, c := range ctrls {
		out = append(out, ControllerInfo{ID: c.ID(), State: c.State().String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid controller id"})
		return
	}
	ctrl, ok := s.ctl.Controller(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown controller"})
		return
	}
	ctrl.Reset()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reset requested"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
