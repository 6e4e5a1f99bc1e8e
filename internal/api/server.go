// Package api exposes the advisor pipeline over HTTP.
//
// Endpoints:
//
//	POST /query       →  answer a support query with citations
//	POST /feedback    →  record agent feedback on a response
//	GET  /feedback    →  list recorded feedback, newest first
//	GET  /performance →  response-quality report from feedback
//	GET  /health      →  liveness probe with store heartbeat
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads on slow clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout  = 30 * time.Second
	WriteTimeout = 60 * time.Second
	IdleTimeout  = 120 * time.Second
)

// Answerer produces a normalized response for a support query.
type Answerer interface {
	Answer(ctx context.Context, query string) (advisor.Response, error)
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets a structured logger. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithAllowedOrigins sets the CORS allowlist. "*" allows any origin.
// Default is no CORS headers at all.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) { s.origins = origins }
}

// Server is the HTTP server for the advisor REST API.
type Server struct {
	mux      *http.ServeMux
	answerer Answerer
	store    advisor.VectorStore
	logger   *slog.Logger
	origins  []string
}

// NewServer creates a server with all routes registered. answerer handles
// /query; store backs the feedback and health endpoints.
func NewServer(answerer Answerer, store advisor.VectorStore, opts ...ServerOption) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		answerer: answerer,
		store:    store,
		logger:   nopLogger,
	}
	for _, o := range opts {
		o(s)
	}

	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("POST /feedback", s.handleSubmitFeedback)
	s.mux.HandleFunc("GET /feedback", s.handleListFeedback)
	s.mux.HandleFunc("GET /performance", s.handlePerformance)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → CORS → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		s.recoveryMiddleware,
		s.corsMiddleware,
		s.loggingMiddleware,
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
