package observe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the Prometheus /metrics endpoint. Long batch runs (many
// transcripts per invocation) are scrape targets for their lifetime; the
// binaries start one only when an address is configured.
type Server struct {
	addr           string
	logger         *slog.Logger
	metricsHandler http.Handler
	server         *http.Server
}

// ServerOption is a functional option for [NewServer].
type ServerOption func(*Server)

// WithServerLogger sets the logger used for lifecycle messages. Defaults to
// slog.Default().
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithMetricsHandler overrides the handler mounted at /metrics. Tests use
// this to serve a dedicated Prometheus registry instead of the global one.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) { s.metricsHandler = h }
}

// NewServer creates the observability HTTP server listening on addr. The
// server is not started; call [Server.Start].
func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{
		addr:           addr,
		logger:         slog.Default(),
		metricsHandler: promhttp.Handler(),
	}
	for _, o := range opts {
		o(s)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine. Listen errors are logged,
// not returned: metrics exposure is best-effort and never blocks a run.
func (s *Server) Start() {
	go func() {
		s.logger.Info("serving metrics", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
