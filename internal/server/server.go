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

	"go.uber.org/zap"

	"github.com/otpgate/otpgate/internal/logging"
	"github.com/otpgate/otpgate/internal/verify"
)

// Config holds the verification service configuration
type Config struct {
	Addr     string      // listen address, e.g. "127.0.0.1:8970"
	LogLevel string      // zap level; empty means env-controlled
	Verify   verify.Func // the verification collaborator answering submissions
}

// Server is the demo verification service. It answers code submissions over
// plain HTTP (POST /verify) and over WebSocket (GET /verify/ws), both
// speaking the verify.CheckRequest/CheckResponse JSON format.
type Server struct {
	config  *Config
	httpSrv *http.Server

	mu       sync.Mutex
	attempts int
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.Verify == nil {
		return nil, fmt.Errorf("verification function must be provided")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("listen address must be provided")
	}

	s := &Server{config: config}
	s.httpSrv = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler serving both endpoints. Exposed
// separately so tests can drive the service through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/verify/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	logging.Info("Starting otpgate verification service",
		zap.String("addr", s.config.Addr),
		zap.String("log_level", s.config.LogLevel),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.Serve(listener)
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	logging.Info("Server stopped")
	return nil
}

// nextAttempt returns a monotonically increasing attempt number for logging.
func (s *Server) nextAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return s.attempts
}

// check runs the verifier and logs the outcome. A verifier error is reported
// to the client as a plain rejection; the detail stays in the server log.
func (s *Server) check(ctx context.Context, source, code string) verify.CheckResponse {
	attempt := s.nextAttempt()

	if !verify.ValidCode(code) {
		logging.LogVerifyAttempt(source, attempt, false, nil)
		return verify.CheckResponse{OK: false, Reason: "code must be 6 digits"}
	}

	ok, err := s.config.Verify(ctx, code)
	logging.LogVerifyAttempt(source, attempt, ok && err == nil, err)
	if err != nil {
		return verify.CheckResponse{OK: false, Reason: "verification failed"}
	}
	if !ok {
		return verify.CheckResponse{OK: false, Reason: "invalid code"}
	}
	return verify.CheckResponse{OK: true}
}

// handleHealth reports liveness for service discovery probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
