// Package api provides the HTTP management server for RIND: record CRUD,
// the legacy update endpoint, health and stats, and the swagger UI.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Danton11/RIND/internal/api/handlers"
	"github.com/Danton11/RIND/internal/api/middleware"
	"github.com/Danton11/RIND/internal/metrics"
	"github.com/Danton11/RIND/internal/records"
)

// Config carries the dependencies for New. Sink and DNSStats are
// optional; Provider is only used for the health probe.
type Config struct {
	Addr     string
	Store    *records.Store
	Provider records.DatastoreProvider
	Logger   *slog.Logger
	Sink     metrics.Sink
	DNSStats handlers.DNSStatsFunc
}

// Server is the management API server. It satisfies the runner's HTTP
// component contract so it can be driven next to the DNS listener.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	logger     *slog.Logger
}

// New builds the API server and registers all routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = metrics.NopSink{}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))
	engine.Use(middleware.RequestMetrics(sink))

	h := handlers.New(cfg.Store, cfg.Provider, logger, sink, cfg.DNSStats)
	RegisterRoutes(engine, h)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		engine: engine,
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe serves requests until the listener fails or Shutdown is
// called. The context is accepted for symmetry with the other components
// and is not consulted once the listener is up.
func (s *Server) ListenAndServe(_ context.Context) error {
	s.logger.Info("api server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
