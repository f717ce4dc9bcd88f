package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/storage"
	"a11y-hq/lumen/pkg/scan"
	"a11y-hq/lumen/pkg/telemetry/health"
	"a11y-hq/lumen/pkg/telemetry/logging"
	"a11y-hq/lumen/pkg/telemetry/metrics"
	"a11y-hq/lumen/pkg/telemetry/tracing"
)

// ErrAlreadyRunning is returned by Start when the server is serving.
var ErrAlreadyRunning = errors.New("server is already running")

// Deps are the components the server exposes.
type Deps struct {
	// Catalog provides the active rule set. Required.
	Catalog *catalog.Manager

	// Runner executes scans. Defaults to a Runner with default settings.
	Runner *scan.Runner

	// Storage keeps scan results. Defaults to in-memory storage.
	Storage results.Storage

	// Health serves /health and /ready. Defaults to a checker with the
	// storage and rules checks registered.
	Health *health.Checker

	// Metrics is served on MetricsPath when set.
	Metrics     *metrics.Collector
	MetricsPath string

	// Tracer starts a server span per request when enabled.
	Tracer *tracing.Tracer

	Version health.VersionInfo
	Logger  *logging.Logger
}

// Server is the HTTP API server.
type Server struct {
	config     config.ServerConfig
	deps       Deps
	logger     *logging.Logger
	router     chi.Router
	httpServer *http.Server
	tlsConfig  *tls.Config
	keyring    *keyring
	scanBucket *tokenBucket

	shutdownOnce sync.Once
	mu           sync.Mutex
	isRunning    bool
}

// New creates a server. A nil cfg uses the defaults.
func New(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Catalog == nil {
		return nil, errors.New("server requires a rule catalog")
	}

	c := config.Default().Server
	if cfg != nil {
		c = *cfg
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Runner == nil {
		deps.Runner = scan.NewRunner(nil, deps.Logger, deps.Metrics, deps.Tracer)
	}
	if deps.Storage == nil {
		deps.Storage = storage.NewMemoryStorage()
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
		deps.Health.RegisterCheck("storage", deps.Storage.Ping)
		deps.Health.RegisterCheck("rules", rulesCheck(deps.Catalog))
	}

	s := &Server{
		config: c,
		deps:   deps,
		logger: deps.Logger.WithComponent("server"),
	}

	tlsConfig, leaf, err := buildTLSConfig(&c.TLS)
	if err != nil {
		return nil, fmt.Errorf("tls: %w", err)
	}
	if leaf != nil {
		s.tlsConfig = tlsConfig
		if until := time.Until(leaf.NotAfter); until < 30*24*time.Hour {
			s.logger.Warn("TLS certificate expires soon", "not_after", leaf.NotAfter, "subject", leaf.Subject.CommonName)
		}
	}
	if c.Auth.Enabled {
		s.keyring = newKeyring(&c.Auth)
		if len(s.keyring.keys) == 0 {
			return nil, errors.New("auth is enabled but no API key resolved")
		}
	}
	if c.RateLimit.ScansPerMinute > 0 {
		s.scanBucket = newTokenBucket(c.RateLimit.Burst, c.RateLimit.ScansPerMinute)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on the configured address and blocks until ctx is done or
// the listener fails. It shuts the server down gracefully before returning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.router,
		TLSConfig:    s.tlsConfig,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress, "tls", httpServer.TLSConfig != nil)
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.Unlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

func rulesCheck(m *catalog.Manager) health.CheckFunc {
	return func(ctx context.Context) error {
		st := m.Status()
		if st.Rules == 0 {
			if st.LastError != "" {
				return fmt.Errorf("no rules loaded: %s", st.LastError)
			}
			return errors.New("no rules loaded")
		}
		return nil
	}
}
