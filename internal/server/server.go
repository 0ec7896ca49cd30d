// Package server implements the cinelake HTTP API server.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cinelake/cinelake/internal/analytics"
	"github.com/cinelake/cinelake/internal/server/handlers"
	"github.com/cinelake/cinelake/internal/store"
	"github.com/cinelake/cinelake/pkg/types"
)

// Server is the cinelake HTTP API server.
type Server struct {
	handlers *handlers.Handlers
	router   chi.Router
	cfg      types.ServerConfig
	logger   *slog.Logger
	srv      *http.Server
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithMemory attaches the in-memory snapshot refreshed by partition reloads.
func WithMemory(m *analytics.Memory) Option {
	return func(s *Server) { s.handlers.SetMemory(m) }
}

// WithLedger serves run history from the given ledger.
func WithLedger(l handlers.RunReader) Option {
	return func(s *Server) { s.handlers.SetLedger(l) }
}

// WithMirror forwards reloaded partitions to the given warehouse.
func WithMirror(m handlers.Mirror) Option {
	return func(s *Server) { s.handlers.SetMirror(m) }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
		s.handlers.SetLogger(logger)
	}
}

// New creates an HTTP server answering the analytics queries from source and
// partition operations from st.
func New(cfg types.ServerConfig, source analytics.Source, st store.Store, opts ...Option) *Server {
	s := &Server{
		handlers: handlers.New(source, st),
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	s.router = r
	s.registerRoutes(r)
	return s
}

// Handler returns the configured route tree, for mounting under a test
// listener or an alternative server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests and blocks until the listener fails or
// the server is stopped.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("http api listening", "addr", s.cfg.Addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
