package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// HTTPComponent is the lifecycle surface the runner drives for the
// control-plane API and the metrics exposition server.
type HTTPComponent interface {
	Addr() string
	ListenAndServe(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Runner orchestrates startup and shutdown: the UDP listener plus any
// number of HTTP components run concurrently until a signal arrives or
// one of them fails, then everything is stopped gracefully.
type Runner struct {
	Logger      *slog.Logger
	UDP         *UDPServer
	UDPAddr     string
	HTTP        []HTTPComponent
	StopTimeout time.Duration // defaults to 5s
}

// Run starts all components and blocks until SIGINT or SIGTERM.
func (r *Runner) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return r.RunWithContext(ctx)
}

// RunWithContext starts all components and blocks until ctx is cancelled
// or a component fails. The first failure wins; everything else is shut
// down before returning it.
func (r *Runner) RunWithContext(ctx context.Context) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	errCh := make(chan error, 1+len(r.HTTP))

	go func() { errCh <- r.UDP.Run(ctx, r.UDPAddr) }()
	for _, h := range r.HTTP {
		go func() {
			err := h.ListenAndServe(ctx)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errCh <- err
		}()
	}

	if r.Logger != nil {
		r.Logger.Info("serving", "dns_addr", r.UDPAddr, "http_addrs", addrsOf(r.HTTP))
	}

	var runErr error
	select {
	case <-ctx.Done():
		// shutdown requested via signal
	case err := <-errCh:
		if err != nil {
			cancelRun()
			runErr = err
		}
	}

	r.stopAll()
	return runErr
}

// stopAll drains the pipeline and shuts the HTTP components down, each
// bounded by the stop timeout.
func (r *Runner) stopAll() {
	timeout := r.StopTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if err := r.UDP.Stop(timeout); err != nil && r.Logger != nil {
		r.Logger.Warn("udp shutdown incomplete", "err", err)
	}

	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, h := range r.HTTP {
		if err := h.Shutdown(shCtx); err != nil && r.Logger != nil {
			r.Logger.Warn("http shutdown incomplete", "addr", h.Addr(), "err", err)
		}
	}
}

func addrsOf(hs []HTTPComponent) []string {
	addrs := make([]string, 0, len(hs))
	for _, h := range hs {
		addrs = append(addrs, h.Addr())
	}
	return addrs
}
