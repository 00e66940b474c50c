// Package server exposes the NetSnake move API. Every response is held back
// by the network simulator before it is written.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/netsnake/internal/config"
	"github.com/vovakirdan/netsnake/internal/netsim"
)

// writeMargin is added to the largest simulated delay to get the write
// timeout.
const writeMargin = 5 * time.Second

const shutdownTimeout = 10 * time.Second

// Server is the HTTP move API.
type Server struct {
	cfg       config.ServerConfig
	sim       *netsim.Simulator
	logger    *log.Logger
	telemetry *Telemetry
	streams   *StreamRegistry
	http      *http.Server
}

// New creates a server backed by sim. A nil logger logs to stderr.
func New(cfg config.ServerConfig, sim *netsim.Simulator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "netsnake",
		})
	}

	s := &Server{
		cfg:       cfg,
		sim:       sim,
		logger:    logger,
		telemetry: NewTelemetry(),
		streams:   NewStreamRegistry(),
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		WriteTimeout:      sim.MaxDelay() + writeMargin,
	}
	return s
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("server: cannot listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting move server",
		"address", ln.Addr().String(),
		"base_latency", s.sim.BaseLatency(),
		"write_timeout", s.http.WriteTimeout,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down move server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown closes open streams and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.streams.CloseAll()
	return s.http.Shutdown(ctx)
}
