// Package api exposes the operational HTTP interface: health and
// Prometheus metrics for long batch runs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pgorczak/otodom-crawler/internal/metrics"
)

// Server serves /healthz and /metrics on a side listener while an
// engine run is in progress.
type Server struct {
	addr   string
	router chi.Router
	srv    *http.Server
	logger *zap.Logger
}

// NewServer constructs a Server bound to addr.
func NewServer(addr string, logger *zap.Logger) *Server {
	s := &Server{addr: addr, logger: logger}
	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("Metrics listener stopped", zap.Error(err))
		}
	}()
	s.logger.Info("Metrics listener started", zap.String("addr", s.addr))
}

// Shutdown stops the listener, waiting up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
