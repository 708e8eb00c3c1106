// Package server hosts the canonical Store behind a unix domain socket,
// translating each inbound request into a Store operation and a typed JSON
// response. Expected failure modes never surface as errors to the caller:
// they are encoded in the response shape (null, zero, false).
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"confhub/internal/logging"
	"confhub/internal/store"
)

var logger = logging.For("server")

// Server owns the request router and the socket lifecycle for one host.
type Server struct {
	authority string
	socket    string
	// st is nil when the Store failed to initialize at activation. The
	// host then stays responsive and serves empty/zero results for every
	// operation instead of crashing: degraded availability by policy.
	st      *store.Store
	httpSrv *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server for the given authority. Pass a nil store to run in
// degraded mode.
func New(authority, socketPath string, st *store.Store) *Server {
	s := &Server{
		authority: authority,
		socket:    socketPath,
		st:        st,
	}
	s.httpSrv = &http.Server{Handler: s.routes()}
	return s
}

// Degraded reports whether the host is serving no-op responses because its
// Store failed to initialize.
func (s *Server) Degraded() bool {
	return s.st == nil
}

// Listen binds the unix socket. A stale socket file from a previous run is
// removed first; a live socket with another host on it fails the bind.
func (s *Server) Listen() error {
	if err := removeStaleSocket(s.socket); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socket, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts requests until ctx is cancelled. Call Listen first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Stop shuts the server down gracefully and removes the socket file.
func (s *Server) Stop() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpSrv.Shutdown(shutdownCtx)
	if rmErr := os.Remove(s.socket); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn("removing socket file", "socket", s.socket, "err", rmErr)
	}
	return err
}

// SocketPath returns the unix socket path the server binds.
func (s *Server) SocketPath() string {
	return s.socket
}

// removeStaleSocket deletes a leftover socket file nobody answers on.
// Refuses to touch a socket a live host is still serving.
func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	conn, err := net.DialTimeout("unix", path, 250*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socket %s is already in use", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	logger.Warn("removed stale socket", "socket", path)
	return nil
}
