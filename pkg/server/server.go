// Package server provides the HTTP server used by ProxyScope services:
// a gin engine with request-id, request-log and recovery middleware, and
// a lifecycle with graceful shutdown.
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

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpopts "github.com/kart-io/proxyscope/pkg/options/http"
)

// Server wraps a gin engine and an http.Server with unified lifecycle.
type Server struct {
	opts   *httpopts.Options
	engine *gin.Engine
	srv    *http.Server

	mu       sync.Mutex
	listener net.Listener
	started  bool
}

// New creates a Server listening on opts.Addr. When no middleware is given
// the default chain (RequestID, Logger, Recovery) is installed.
func New(opts *httpopts.Options, middleware ...gin.HandlerFunc) *Server {
	if opts == nil {
		opts = httpopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if len(middleware) == 0 {
		middleware = []gin.HandlerFunc{RequestID(), Logger(), Recovery()}
	}
	engine.Use(middleware...)

	return &Server{
		opts:   opts,
		engine: engine,
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the address the server is bound to. Before Start it returns
// the configured address; after Start it returns the actual listener address
// (useful when the configured port is 0).
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.opts.Addr
}

// Start binds the listener and begins serving in the background.
// Bind failures are returned synchronously.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	s.listener = ln
	s.started = true
	s.mu.Unlock()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server terminated", "error", err.Error())
		}
	}()

	logger.Infow("HTTP server started", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer shutdownCancel()

	return s.Stop(shutdownCtx)
}
