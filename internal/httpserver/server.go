// Package httpserver wires the path guard, host guard, wire parser/encoder,
// handlers, connection driver, worker pool, and acceptor into a running
// origin server.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/robfig/cron/v3"

	"github.com/disiqueira/httpserver/internal/config"
	"github.com/disiqueira/httpserver/internal/hostguard"
	"github.com/disiqueira/httpserver/internal/metrics"
	"github.com/disiqueira/httpserver/internal/workerpool"
)

// Server owns the listening socket, the worker pool, and the authority set
// derived from ServerConfig.
type Server struct {
	cfg       *config.ServerConfig
	authority hostguard.Authority
	log       *slog.Logger
	metrics   *metrics.Collectors

	listener net.Listener
	pool     *workerpool.Pool[HandoffItem]
	statusC  *cron.Cron
}

// New constructs a Server bound to cfg but does not yet listen.
func New(cfg *config.ServerConfig, log *slog.Logger, collectors *metrics.Collectors) *Server {
	s := &Server{
		cfg:       cfg,
		authority: hostguard.NewAuthority(cfg.Host, strconv.Itoa(cfg.Port)),
		log:       log,
		metrics:   collectors,
	}

	s.pool = workerpool.New[HandoffItem](cfg.Workers, cfg.Backlog, s.handleConnection, s.handlePanic)
	return s
}

// Addr returns the bound listen address. It is only valid after Run has
// started listening; callers that need it (tests, startup logging) must
// synchronize with that event themselves.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleConnection(item HandoffItem) {
	if s.metrics != nil {
		s.metrics.ActiveWorkers.Inc()
		defer s.metrics.ActiveWorkers.Dec()
	}
	serveConnection(item, s.cfg, s.authority, s.log, s.metrics)
}

// handlePanic recovers a panic raised while serving one connection so it
// never takes down the pool. It logs the panic with connection identity and
// closes the socket; the worker then returns to the queue.
func (s *Server) handlePanic(item HandoffItem, r any) {
	s.log.Error("worker panic recovered", "event", "panic", "peer", item.Peer, "recover", r)
	_ = item.Conn.Close()
}

// Run ensures the document root and upload directory exist, binds the
// listen socket, starts the worker pool, the status reporter, and the
// accept loop, and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.DocumentRoot, 0o755); err != nil {
		return fmt.Errorf("create document root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(s.cfg.DocumentRoot, s.cfg.UploadSubdir), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = ln

	s.log.Info("server started", "event", "startup", "addr", addr, "workers", s.cfg.Workers, "document_root", s.cfg.DocumentRoot)

	s.pool.Start()
	s.statusC = startStatusReporter(s.pool, s.log)

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	s.acceptLoop(ctx)

	s.statusC.Stop()
	s.pool.Stop()
	s.log.Info("server stopped", "event", "shutdown")
	return nil
}
