// Package server runs the HTTP listener for the service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/book-expert/logger"
)

const (
	listenNetwork       = "tcp"
	readHeaderTimeout   = 10 * time.Second
	errFmtBind          = "server failed to bind %s: %w"
	errFmtShutdown      = "server shutdown error: %w"
	logFmtListening     = "HTTP server listening on %s"
	logFmtServeFailed   = "HTTP server error: %v"
	logMsgShuttingDown  = "Shutting down HTTP server"
	logMsgShutdownClean = "HTTP server shut down successfully"
)

// Options configure the HTTP server timeouts.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps an http.Server around a handler.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             *logger.Logger
	addr            string
}

// New creates a Server for handler.
func New(opts Options, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
		},
		shutdownTimeout: opts.ShutdownTimeout,
		log:             log,
		addr:            opts.Addr,
	}
}

// Start binds the listener and serves in the background. It returns once
// the port is bound.
func (s *Server) Start() error {
	listener, err := net.Listen(listenNetwork, s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf(errFmtBind, s.httpServer.Addr, err)
	}

	s.addr = listener.Addr().String()
	s.log.Info(logFmtListening, s.addr)

	go func() {
		serveErr := s.httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.log.Error(logFmtServeFailed, serveErr)
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded, else the
// configured one.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the server down, waiting for in-flight requests up to the
// configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info(logMsgShuttingDown)

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf(errFmtShutdown, err)
	}

	s.log.Info(logMsgShutdownClean)

	return nil
}
