// Package server exposes the timer service over JSON-RPC 2.0, reachable via
// HTTP POST (/rpc) and WebSocket (/ws) on a loopback TCP listener.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chronoq/chronoq/internal/timerd"
	"github.com/chronoq/chronoq/pkg/logger"
)

// shutdownGrace bounds how long in-flight requests may run during shutdown.
const shutdownGrace = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	// Addr is the host:port to listen on. Port 0 picks an ephemeral port.
	Addr string

	// Secret is the Bearer token required on every request.
	// Empty disables authentication (loopback use).
	Secret string

	// Version, Commit and BuildType are reported by system.getVersion.
	Version   string
	Commit    string
	BuildType string
}

// Server serves the RPC surface for one timer service.
type Server struct {
	log logger.Logger
	cfg *Config
	rpc *RPCServer

	mu   sync.Mutex
	http *http.Server
	addr string
}

// New creates a Server for the given timer service. onShutdown is forwarded
// to the system.shutdown handler.
func New(l logger.Logger, svc *timerd.Service, cfg *Config, onShutdown func()) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Server{
		log: l,
		cfg: cfg,
		rpc: NewRPCServer(cfg, svc, onShutdown),
	}
}

// Start listens on the configured address and serves until the context is
// cancelled or Shutdown is called. It blocks; a nil return means clean
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/rpc", requireToken(s.cfg.Secret, s.rpc.bridge))
	mux.Handle("/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.handleWS)))

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: mux}
	s.mu.Lock()
	s.http = srv
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	// The watcher exits with Serve: either the context cancels and triggers
	// Shutdown, or Serve returns on its own and the watcher is released.
	served := make(chan struct{})
	defer close(served)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Shutdown()
		case <-served:
		}
	}()

	s.log.Info("rpc server listening on %s", s.addr)
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound listen address, valid once Start has begun serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown stops accepting connections, drains in-flight requests within a
// grace period and closes the RPC bridge. Safe to call more than once.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := srv.Shutdown(ctx)
	s.rpc.Close()
	s.log.Info("rpc server stopped")
	return err
}
