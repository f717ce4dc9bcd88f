package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/storage"
	"a11y-hq/lumen/pkg/scan"
	"a11y-hq/lumen/pkg/telemetry/logging"
	"a11y-hq/lumen/pkg/telemetry/metrics"
	"a11y-hq/lumen/pkg/telemetry/tracing"
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
}

// loadConfig initializes the global configuration once. An explicit --config
// must exist; otherwise ./lumen.yaml is used when present.
func loadConfig() (*config.Config, error) {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg, nil
	}

	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	return &app{cfg: cfg, logger: logger, tracer: tracer}, nil
}

// enableMetrics creates a collector when metrics are enabled in the config.
func (a *app) enableMetrics() {
	if a.cfg.Telemetry.Metrics.Enabled {
		a.metrics = metrics.NewCollector(&a.cfg.Telemetry.Metrics, nil)
	}
}

// loadCatalog builds the rule catalog from the configured sources.
func (a *app) loadCatalog(ctx context.Context) (*catalog.Manager, error) {
	m, err := catalog.NewManager(&a.cfg.Rules, a.logger, a.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule catalog: %w", err)
	}
	if err := m.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	a.logger.Debug("rules loaded", "rules", m.Status().Rules, "version", m.Status().Version)
	return m, nil
}

func (a *app) openStorage() (results.Storage, error) {
	store, err := storage.New(&a.cfg.Storage, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open result storage: %w", err)
	}
	return store, nil
}

func (a *app) runner() *scan.Runner {
	return scan.NewRunner(&a.cfg.Scan, a.logger, a.metrics, a.tracer)
}

func (a *app) close() {
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Warn("failed to shut down tracer", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openOutput returns the command's stdout, or the named file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
