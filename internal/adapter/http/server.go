// Package http serves the agent's operational endpoints in serve mode.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsethwilliams/isitsafetovisit/internal/domain"
)

// RankingsSource returns the current leaderboard.
type RankingsSource interface {
	Load(ctx context.Context) ([]domain.RankingEntry, error)
}

// Server exposes health, readiness, metrics and rankings HTTP endpoints.
type Server struct {
	httpServer *http.Server
	rankings   RankingsSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /rankings routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, rankings RankingsSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		rankings: rankings,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /rankings", s.handleRankings)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rankings.Load(r.Context())
	if err != nil {
		s.logger.Error("load rankings failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "rankings unavailable"})
		return
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, entries)
}
