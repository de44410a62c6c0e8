package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/config"
)

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Host string
	// Port 0 binds an ephemeral port; Addr reports the one chosen
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns the timeouts used for the watchlist API
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// ServerConfigFrom applies the listen address and shutdown timeout from the process config
func ServerConfigFrom(cfg *config.Config) ServerConfig {
	sc := DefaultServerConfig()
	sc.Host = cfg.Host
	sc.Port = cfg.Port
	if cfg.ShutdownTimeout > 0 {
		sc.ShutdownTimeout = cfg.ShutdownTimeout
	}
	return sc
}

// Server runs the watchlist API until its context is cancelled
type Server struct {
	server *http.Server
	logger zerolog.Logger
	config ServerConfig

	ready    chan struct{}
	mu       sync.Mutex
	boundTo  string
	startErr error
}

// NewServer creates a new API server
func NewServer(handler http.Handler, config ServerConfig, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
			Handler:           handler,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
		},
		logger: logger,
		config: config,
		ready:  make(chan struct{}),
	}
}

// Run listens and serves until ctx is done, then drains in-flight requests for up to
// ShutdownTimeout. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.markReady("", err)
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.markReady(ln.Addr().String(), nil)
	s.logger.Info().Str("addr", s.Addr()).Msg("watchlist API listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Dur("timeout", s.config.ShutdownTimeout).Msg("draining watchlist API")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-serveErr

	s.logger.Info().Msg("watchlist API stopped")
	return nil
}

// Ready is closed once Run has bound its listener or failed to
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address once ready, otherwise the configured one
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundTo != "" {
		return s.boundTo
	}
	return s.server.Addr
}

// StartErr reports why the listener could not be bound, if it couldn't
func (s *Server) StartErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startErr
}

func (s *Server) markReady(addr string, err error) {
	s.mu.Lock()
	s.boundTo = addr
	s.startErr = err
	s.mu.Unlock()
	close(s.ready)
}
