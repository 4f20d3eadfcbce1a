package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	source   StatsSource
	checkers map[string]Checker
	mux      *http.ServeMux
	server   *http.Server
}

// NewServer creates a new health server.
func NewServer(source StatsSource, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		source:   source,
		checkers: make(map[string]Checker),
		mux:      mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.HandleFunc("/errors", s.handleErrors)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// AddChecker registers a dependency probe shown in the detailed report.
func (s *Server) AddChecker(name string, c Checker) {
	s.checkers[name] = c
}

// Handle registers an extra route on the server.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) report(ctx context.Context) HealthReport {
	deps := make(map[string]error, len(s.checkers))
	for name, c := range s.checkers {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		deps[name] = c.Health(cctx)
		cancel()
	}
	return BuildReport(s.source.GetErrorStats(), deps)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.source.GetErrorStats()
	status := BuildReport(stats, nil).SystemStatus

	response := map[string]string{"status": string(status)}
	w.Header().Set("Content-Type", "application/json")

	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.report(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.source.ExportErrorLog())
}
