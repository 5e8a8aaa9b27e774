// Package daemon provides the core daemon runner for chronoq. It owns the
// timer service and RPC server lifecycle: start, remote or signal-driven
// shutdown, and graceful teardown of the scheduling goroutine.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chronoq/chronoq/internal/server"
	"github.com/chronoq/chronoq/internal/timerd"
	"github.com/chronoq/chronoq/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Run is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// Addr is the host:port for the RPC listener.
	Addr string

	// Secret is the RPC auth token; empty disables authentication.
	Secret string

	// ShutdownTimeout is the maximum time Shutdown waits for the runner to
	// finish. A zero value means wait indefinitely.
	ShutdownTimeout time.Duration

	// Version, Commit and BuildType are reported over RPC.
	Version   string
	Commit    string
	BuildType string
}

// Runner manages the daemon lifecycle.
type Runner struct {
	cfg *Config
	log logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	srv     *server.Server
	done    chan struct{}
}

// NewRunner creates a Runner with the given logger and configuration.
func NewRunner(l logger.Logger, cfg *Config) *Runner {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Runner{cfg: cfg, log: l}
}

// Run starts the timer service and the RPC server and blocks until the
// context is cancelled, Shutdown is called, or a client invokes
// system.shutdown. The scheduling goroutine is always joined before Run
// returns, so no timer can fire after it.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	svc := timerd.New(r.log)
	srv := server.New(r.log, svc, &server.Config{
		Addr:      r.cfg.Addr,
		Secret:    r.cfg.Secret,
		Version:   r.cfg.Version,
		Commit:    r.cfg.Commit,
		BuildType: r.cfg.BuildType,
	}, cancel)
	r.srv = srv
	r.mu.Unlock()

	r.log.Info("daemon starting on %s", r.cfg.Addr)
	err := srv.Start(ctx)
	svc.Stop()

	r.mu.Lock()
	r.running = false
	r.cancel = nil
	r.srv = nil
	close(r.done)
	r.mu.Unlock()

	r.log.Info("daemon stopped")
	return err
}

// Addr returns the RPC listen address once the daemon is serving.
func (r *Runner) Addr() string {
	r.mu.Lock()
	srv := r.srv
	r.mu.Unlock()
	if srv == nil {
		return ""
	}
	return srv.Addr()
}

// Running reports whether the daemon is currently serving.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Shutdown requests cooperative shutdown and waits for Run to finish, up to
// the configured timeout.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()

	if r.cfg.ShutdownTimeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.cfg.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}
