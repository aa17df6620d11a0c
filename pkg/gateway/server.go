package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"railguard-io/railguard/pkg/audit"
	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/telemetry/metrics"
)

// Server is the HTTP gateway server.
type Server struct {
	config       config.GatewayConfig
	holder       *guardrails.Holder
	recorder     *audit.Recorder
	metrics      *metrics.ScanMetrics
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a gateway server. Recorder and metrics may be nil.
func NewServer(cfg config.GatewayConfig, holder *guardrails.Holder, recorder *audit.Recorder, m *metrics.ScanMetrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   cfg,
		holder:   holder,
		recorder: recorder,
		metrics:  m,
		logger:   logger.With("component", "gateway.server"),
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/v1/messages", NewScanHandler(s.holder, s.recorder, s.metrics, s.logger))
	mux.Handle("/health", NewHealthHandler())
	mux.Handle("/v1/guardrails", NewStatusHandler(s.holder))
	if s.metrics != nil {
		mux.Handle(s.metrics.Path(), s.metrics.Handler())
	}

	return mux
}
