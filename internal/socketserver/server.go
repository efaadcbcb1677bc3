// Package socketserver implements the local IPC listener: a stream-oriented
// unix socket at a configured filesystem path, one reader goroutine per
// accepted connection, one JSON document per connection.
package socketserver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/buildsock/buildsock/internal/logger"
)

// Server owns the bound socket and the set of connection readers it spawned.
type Server struct {
	socketPath string
	callback   func(interface{})

	// mu serializes Start and Stop
	mu         sync.Mutex
	running    bool
	listener   net.Listener
	stopping   atomic.Bool
	acceptDone chan struct{}

	// conns is touched by the accept goroutine and, after that goroutine
	// has been joined, by Stop, never concurrently.
	conns []*Conn
}

// NewServer creates a server bound to socketPath when started. The callback
// receives each decoded document; it must be safe to call from reader
// goroutines.
func NewServer(socketPath string, callback func(interface{})) *Server {
	return &Server{
		socketPath: socketPath,
		callback:   callback,
	}
}

// SocketPath returns the configured socket path
func (s *Server) SocketPath() string {
	return s.socketPath
}

// IsRunning reports whether the listener is active
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start binds the socket and begins accepting. A stale socket file left by
// an uncleanly terminated run is removed first. Calling Start while already
// started stops the previous instance first. On bind failure the server
// stays in the not-started state and the error is returned for the caller
// to surface; there is no automatic retry.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.stopLocked()
	}

	s.removeSocket()

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("could not create a socket at %s: %w", s.socketPath, err)
	}

	s.listener = listener
	s.stopping.Store(false)
	s.acceptDone = make(chan struct{})
	s.conns = nil
	s.running = true

	go s.acceptLoop(listener, s.acceptDone)

	logger.Info("Listening on %s", s.socketPath)
	return nil
}

// Stop synchronously tears everything down: it closes the listening socket
// (unblocking the accept call), joins the accept goroutine, stops every
// still-active reader, and removes the socket file. Idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Server) stopLocked() {
	if !s.running {
		return
	}

	s.stopping.Store(true)
	s.listener.Close()
	<-s.acceptDone

	// The accept goroutine is gone; conns is ours now.
	for _, c := range s.conns {
		c.Stop()
	}
	s.conns = nil
	s.listener = nil
	s.running = false

	s.removeSocket()
	logger.Info("Stopped listening on %s", s.socketPath)
}

func (s *Server) removeSocket() {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove socket file %s: %v", s.socketPath, err)
	}
}

func (s *Server) acceptLoop(listener net.Listener, done chan struct{}) {
	defer close(done)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.stopping.Load() {
				// Expected: Stop closed the listener under us.
				return
			}
			logger.Error("Accept failed: %v", err)
			continue
		}

		// Opportunistically drop finished readers. Connection volume is
		// low and human-triggered, so the linear scan is fine.
		active := s.conns[:0]
		for _, c := range s.conns {
			if c.IsActive() {
				active = append(active, c)
			}
		}
		s.conns = append(active, newConn(conn, s.callback))
	}
}
