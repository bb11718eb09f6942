// Package httpserver wires the API handlers, /health and /metrics onto one
// listener.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/server/handlers"
	smw "git.home.luguber.info/inful/pagepublisher/internal/server/middleware"
)

// Options configures the server.
type Options struct {
	Addr string
	// Metrics, when set, is mounted at MetricsPath.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// Server is the HTTP front of the daemon.
type Server struct {
	opts         Options
	srv          *http.Server
	addr         net.Addr
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter

	publishHandlers    *handlers.PublishHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs the server. Start must be called to listen.
func New(publish *handlers.PublishHandlers, monitoring *handlers.MonitoringHandlers, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	s := &Server{
		opts:               opts,
		logger:             opts.Logger,
		errorAdapter:       derrors.NewHTTPErrorAdapter(opts.Logger),
		publishHandlers:    publish,
		monitoringHandlers: monitoring,
	}
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter)
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/{env}/pages/{id}/publish", s.publishHandlers.HandlePublish)
	mux.HandleFunc("POST /api/v1/{env}/pages/bulk-publish", s.publishHandlers.HandleBulkPublish)
	mux.HandleFunc("DELETE /api/v1/{env}/pages/{id}", s.publishHandlers.HandleUnpublish)
	mux.HandleFunc("POST /api/v1/{env}/feeds", s.publishHandlers.HandleFeeds)
	mux.HandleFunc("GET /health", s.monitoringHandlers.HandleHealthCheck)
	if s.opts.Metrics != nil {
		mux.Handle("GET "+s.opts.MetricsPath, s.opts.Metrics)
	}
	return s.mchain(mux)
}

// Start binds the listener up front so a busy port fails here instead of in
// the serving goroutine.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("addr", s.addr.String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() net.Addr { return s.addr }

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
