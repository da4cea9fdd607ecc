package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/metrics"
	"github.com/muurk/tvremote/internal/remote"
)

// DefaultListen is the address `tvremote serve` binds when none is configured
const DefaultListen = ":7420"

// Config holds the server configuration
type Config struct {
	Listen  string
	Remote  *remote.Remote
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Server exposes a Remote over HTTP
type Server struct {
	config     *Config
	remote     *remote.Remote
	metrics    *metrics.Metrics
	logger     *zap.Logger
	mux        *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader

	wg      sync.WaitGroup
	mu      sync.Mutex
	streams map[string]*websocket.Conn
}

// New creates a Server. Remote is required.
func New(config *Config) (*Server, error) {
	if config.Remote == nil {
		return nil, errors.New("server: remote is required")
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		config:  config,
		remote:  config.Remote,
		metrics: config.Metrics,
		logger:  logger,
		mux:     mux,
		streams: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.httpServer = &http.Server{
		Addr:              config.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and blocks until an interrupt
// or a serve error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	s.logger.Info("HTTP API listening", zap.String("addr", listener.Addr().String()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(listener)
	}()

	select {
	case <-sigChan:
		s.logger.Info("shutdown signal received, stopping server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on listener until Shutdown is called
func (s *Server) Serve(listener net.Listener) error {
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, closes event streams and waits for
// their writers to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	for addr, conn := range s.streams {
		s.logger.Debug("closing event stream", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("shutdown timeout, event streams still open")
	}

	s.remote.StopDiscovery()
	return err
}

// ActiveStreams returns the number of connected event stream clients
func (s *Server) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}
