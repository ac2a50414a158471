// Package httpserver wires the docgraph HTTP endpoints onto a single listener.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/server/handlers"
	smw "git.home.luguber.info/inful/docgraph/internal/server/middleware"
)

// Options configures the server.
type Options struct {
	Address string

	// MetricsPath enables the Prometheus endpoint when non-empty.
	MetricsPath string
	// Registry is gathered at MetricsPath; nil uses the default registry.
	Registry *prometheus.Registry

	// History is optional; /api/history answers 404 without it.
	History handlers.RunHistory
}

// Server serves the graph endpoints.
type Server struct {
	opts         Options
	state        *GraphState
	srv          *http.Server
	addr         net.Addr
	errorAdapter *derrors.HTTPErrorAdapter
	startTime    time.Time

	graphHandlers      *handlers.GraphHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs a server over state.
func New(state *GraphState, opts Options) *Server {
	s := &Server{
		opts:         opts,
		state:        state,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
		startTime:    time.Now(),
	}
	s.graphHandlers = handlers.NewGraphHandlers(state)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(state, opts.History, s.startTime)
	s.mchain = smw.Chain(slog.Default(), s.errorAdapter)
	return s
}

// Handler returns the complete routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/graph.json", s.graphHandlers.HandleGraph)
	mux.HandleFunc("/api/graph", s.graphHandlers.HandleGraph)
	mux.HandleFunc("/api/graph/local", s.graphHandlers.HandleLocal)
	mux.HandleFunc("/api/history", s.monitoringHandlers.HandleHistory)
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/health", s.monitoringHandlers.HandleHealthCheck)
	if s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, metrics.HTTPHandler(s.opts.Registry))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		err := derrors.NewError(derrors.CategoryNotFound, "no such endpoint").
			WithContext("path", r.URL.Path).
			Build()
		s.errorAdapter.WriteErrorResponse(w, r, err)
	})
	return s.mchain(mux)
}

// Start binds the listener first so address errors surface synchronously,
// then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("http startup failed: %w", err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.addr = ln.Addr()
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", logfields.Error(err))
		}
	}()

	slog.Info("HTTP server started", slog.String("address", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
