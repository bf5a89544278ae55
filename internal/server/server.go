// Package server runs the keep-alive HTTP endpoint used by uptime pingers,
// plus health and Prometheus metrics routes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/relaybot/internal/ai"
	"github.com/edgard/relaybot/internal/metrics"
	"github.com/edgard/relaybot/internal/text"
)

// ShutdownTimeout bounds graceful shutdown once the run context ends.
const ShutdownTimeout = 5 * time.Second

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	healthTimeout  = 2 * time.Second
)

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderReporter reports AI provider health.
type ProviderReporter interface {
	HealthReport() []ai.ProviderHealth
}

// Deps holds the server's collaborators. Database and Providers may be nil.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Database  Pinger
	Providers ProviderReporter
}

// Server is the keep-alive HTTP server.
type Server struct {
	addr   string
	deps   Deps
	logger *slog.Logger
}

// New creates a server listening on addr once Run is called.
func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &Server{
		addr:   addr,
		deps:   deps,
		logger: deps.Logger.With("component", "keepalive_server"),
	}
}

// Handler builds the chi router with all routes wired.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot())
	r.Get("/health", s.handleHealth())
	r.Handle("/metrics", s.deps.Metrics.Handler())

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("keep-alive server listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Keep-alive server started", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("keep-alive server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Keep-alive server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("keep-alive server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Bot is alive!")
	}
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status            string              `json:"status"`
	Uptime            string              `json:"uptime"`
	StartedAt         time.Time           `json:"started_at"`
	MessagesProcessed int64               `json:"messages_processed"`
	Database          string              `json:"database"`
	Providers         []ai.ProviderHealth `json:"providers"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.deps.Metrics.Snapshot()
		resp := HealthResponse{
			Status:            statusOK,
			Uptime:            text.FormatUptime(snap.Uptime),
			StartedAt:         snap.StartedAt,
			MessagesProcessed: snap.MessagesProcessed,
			Database:          "disabled",
			Providers:         []ai.ProviderHealth{},
		}

		if s.deps.Database != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			err := s.deps.Database.Ping(ctx)
			cancel()
			if err != nil {
				s.logger.WarnContext(r.Context(), "Health check database ping failed", "error", err)
				resp.Database = "unavailable"
				resp.Status = statusDegraded
			} else {
				resp.Database = statusOK
			}
		}

		if s.deps.Providers != nil {
			if report := s.deps.Providers.HealthReport(); len(report) > 0 {
				resp.Providers = report
				if !anyAvailable(report) {
					resp.Status = statusDegraded
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == statusDegraded {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func anyAvailable(report []ai.ProviderHealth) bool {
	for _, p := range report {
		if p.Available {
			return true
		}
	}
	return false
}
