package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/projtrack/internal/mcp"
	"github.com/rpggio/projtrack/internal/metrics"
)

const (
	maxUploadBytes = 10 << 20
	maxImportBytes = 10 << 20
)

// Config wires the REST router.
type Config struct {
	Services mcp.Services
	// MCP, when set, is mounted at /mcp.
	MCP     http.Handler
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server holds the REST handlers.
type Server struct {
	svc     mcp.Services
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	srv := &Server{svc: cfg.Services, logger: cfg.Logger, metrics: cfg.Metrics}

	r.Get("/health", srv.handleHealth)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)
		r.Use(srv.metricsMiddleware)

		r.Post("/sessions", srv.handleOpenSession)
		r.Get("/sessions/current", srv.handleGetSession)
		r.Delete("/sessions/current", srv.handleCloseSession)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", srv.handleListProjects)
			r.Post("/", srv.handleCreateProject)
			r.Delete("/", srv.handleClearProjects)
			r.Get("/export", srv.handleExport)
			r.Post("/import", srv.handleImport)

			r.Get("/{id}", srv.handleGetProject)
			r.Patch("/{id}", srv.handleUpdateProject)
			r.Delete("/{id}", srv.handleDeleteProject)
			r.Put("/{id}/status", srv.handleUpdateStatus)
			r.Put("/{id}/attachment", srv.handleSetAttachment)
		})

		r.Get("/activity", srv.handleActivity)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// metricsMiddleware records each request under its route pattern.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		operation := r.Method + " " + r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				operation = r.Method + " " + pattern
			}
		}
		var err error
		if ww.Status() >= http.StatusBadRequest {
			err = fmt.Errorf("status %d", ww.Status())
		}
		s.metrics.Observe("http", operation, err, time.Since(start))
	})
}
