// Package server implements the central BlueTrace server: a TCP listener that
// runs the authentication handshake and command dispatch for each connected
// client.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/bluetrace-go/internal/services/block"
	"github.com/mcoot/bluetrace-go/internal/services/reconcile"
	"github.com/mcoot/bluetrace-go/internal/services/tempid"
	"github.com/mcoot/bluetrace-go/internal/storage"
)

// Config holds configuration for the TCP server
type Config struct {
	Host string
	Port int

	// BlockDuration is how long a user stays locked out after exhausting
	// authentication attempts.
	BlockDuration time.Duration

	// SessionTimeout bounds each blocking read within a session. The
	// reference design waits forever; a stalled peer here terminates only
	// its own session.
	SessionTimeout time.Duration
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "",
		Port:           9020,
		BlockDuration:  60 * time.Second,
		SessionTimeout: 5 * time.Minute,
	}
}

// Server accepts client connections and runs one session per connection.
// Sessions share only the injected registries.
type Server struct {
	cfg        Config
	storage    storage.Storage
	blocks     *block.Registry
	tempIDs    *tempid.Registry
	reconciler *reconcile.Service
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	sessions sync.WaitGroup
	closed   bool
}

// New creates a new server
func New(
	cfg Config,
	storage storage.Storage,
	blocks *block.Registry,
	tempIDs *tempid.Registry,
	reconciler *reconcile.Service,
	logger *slog.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		storage:    storage,
		blocks:     blocks,
		tempIDs:    tempIDs,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start begins accepting connections and blocks until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("server started", slog.String("addr", listener.Addr().String()))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Addr returns the listener's address, or nil if the server is not started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight sessions,
// bounded by the context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil {
			return fmt.Errorf("closing listener: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConn runs one client session. Session errors never escape: a
// misbehaving or vanished peer terminates its own session only.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	logger := s.logger.With(slog.String("remote", conn.RemoteAddr().String()))
	sess := newSession(conn, s.cfg, s.storage, s.blocks, s.tempIDs, s.reconciler, logger)

	if err := sess.run(ctx); err != nil {
		logger.Info("session ended", slog.String("error", err.Error()))
		return
	}
	logger.Info("session ended")
}
