package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is one dependency whose reachability the health endpoint
// reports.
type Pinger interface {
	Health(ctx context.Context) error
}

// Server exposes /health and /metrics for the duration of a run.
type Server struct {
	server  *http.Server
	pingers map[string]Pinger
}

// NewServer creates the ops server on the given port.
func NewServer(port int, pingers map[string]Pinger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		pingers: pingers,
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	detail := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Health(ctx); err != nil {
			status = "degraded"
			detail[name] = err.Error()
		} else {
			detail[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       status,
		"dependencies": detail,
	})
}
