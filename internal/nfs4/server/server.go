// Package server implements the NFSv4 TCP listener: accepting
// connections, running the per-connection request loop, and dispatching
// each COMPOUND call to internal/nfs4/compound.
package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/netkitd/netkitd/internal/logger"
	"github.com/netkitd/netkitd/internal/metrics"
	"github.com/netkitd/netkitd/internal/nfs4/compound"
	"github.com/netkitd/netkitd/internal/nfs4/handle"
	"github.com/netkitd/netkitd/internal/nfs4/ops"
	"github.com/netkitd/netkitd/internal/nfs4/state"
	"github.com/netkitd/netkitd/internal/nfs4/types"
)

// NFS program and version numbers, RFC 7530 section 2.
const (
	nfsProgram uint32 = 100003
	nfsVersion uint32 = 4
)

// Timeouts bounds how long a connection may sit idle or block on a
// single read/write.
type Timeouts struct {
	Idle  time.Duration
	Read  time.Duration
	Write time.Duration
}

// Config configures the NFSv4 server.
type Config struct {
	BindAddress              string
	Export                   types.ExportConfig
	Timeouts                 Timeouts
	MaxRequestsPerConnection int
}

// Server listens for NFSv4 TCP connections and serves COMPOUND requests
// against a single export root.
type Server struct {
	config   Config
	dispatch compound.Dispatcher
	handles  *handle.Table
	states   *state.Table
	metrics  metrics.NFSMetrics

	listener net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
}

// New constructs a Server bound to cfg. It does not start listening.
func New(cfg Config, nfsMetrics metrics.NFSMetrics) (*Server, error) {
	if cfg.MaxRequestsPerConnection <= 0 {
		cfg.MaxRequestsPerConnection = 32
	}
	if _, err := rand.Read(cfg.Export.WriteVerifier[:]); err != nil {
		return nil, fmt.Errorf("new server: generate write verifier: %w", err)
	}

	return &Server{
		config:   cfg,
		dispatch: ops.Dispatch(),
		handles:  handle.New(),
		states:   state.New(),
		metrics:  nfsMetrics,
		shutdown: make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// ListenAndServe binds the configured address and serves connections
// until ctx is cancelled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.BindAddress)
	if err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}
	s.listener = ln
	logger.Info("NFSv4 server listening", "address", s.config.BindAddress, "export", s.config.Export.RootPath)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				return fmt.Errorf("listen and serve: accept: %w", err)
			}
		}

		s.connsMu.Lock()
		s.conns[conn] = struct{}{}
		s.connsMu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordConnectionAccepted()
			s.metrics.SetActiveConnections(int32(len(s.conns)))
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.forgetConn(conn)
			NewConnection(s, conn).Serve(ctx)
		}()
	}
}

func (s *Server) forgetConn(conn net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	count := len(s.conns)
	s.connsMu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordConnectionClosed()
		s.metrics.SetActiveConnections(int32(count))
	}
}

// Shutdown closes the listener and waits for in-flight connections to
// drain.
func (s *Server) Shutdown() {
	select {
	case <-s.shutdown:
		return
	default:
		close(s.shutdown)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
}
