package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Metrics registry over HTTP at /metrics in the
// Prometheus text exposition format. It also owns the ticker that keeps
// the queries-per-second gauge fresh.
type Server struct {
	metrics    *Metrics
	httpServer *http.Server
}

// NewServer builds the exposition server for addr (host:port).
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{metrics: m, httpServer: httpServer}
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// ListenAndServe serves scrapes until Shutdown. It also starts the
// once-per-second QPS refresh, which stops when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go s.runQPSUpdater(ctx)

	slog.Info("metrics server listening", "addr", s.httpServer.Addr, "path", "/metrics")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) runQPSUpdater(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last = s.metrics.refreshQPS(last)
		}
	}
}
