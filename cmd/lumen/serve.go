package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/results/retention"
	"a11y-hq/lumen/pkg/server"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lumen API server",
	Long: `Start the HTTP API server with the specified configuration.

The server loads the rule catalog, accepts tree snapshots on
POST /api/v1/scans, stores the results and serves them back. Rule packs are
reloaded on file changes (rules.watch) or Git commits (rules.git.poll), and
stored scans are pruned on the retention schedule.

Examples:
  # Start with ./lumen.yaml or the defaults
  lumen serve

  # Start with custom config
  lumen serve --config /etc/lumen/lumen.yaml

  # Override listen address
  lumen serve --listen 0.0.0.0:8080

  # Validate config and rules without starting the server
  lumen serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and rules without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	a.enableMetrics()

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lumen v%s\n", Version)
	if path := config.Path(); path != "" {
		fmt.Fprintf(out, "✓ Configuration loaded from %s\n", path)
	}

	manager, err := a.loadCatalog(ctx)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer manager.Close()
	fmt.Fprintf(out, "✓ Rules loaded (%d rules, version %s)\n", manager.Status().Rules, manager.Status().Version)

	if serveFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	go func() {
		if err := manager.Watch(ctx); err != nil && !errors.Is(err, catalog.ErrNothingToWatch) {
			a.logger.Error("rule watcher stopped", "error", err)
		}
	}()

	store, err := a.openStorage()
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer store.Close()
	fmt.Fprintf(out, "✓ Result storage initialized (%s)\n", cfg.Storage.Backend)

	if cfg.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(store, &cfg.Retention, a.logger)
		if err := pruner.Start(ctx); err != nil {
			a.logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				a.logger.Debug("retention scheduler started", "next_pruning", next)
			}
		}
	}

	metricsPath := ""
	if a.metrics != nil {
		metricsPath = cfg.Telemetry.Metrics.Path
	}

	srv, err := server.New(&cfg.Server, server.Deps{
		Catalog:     manager,
		Runner:      a.runner(),
		Storage:     store,
		Metrics:     a.metrics,
		MetricsPath: metricsPath,
		Tracer:      a.tracer,
		Version:     versionInfo(),
		Logger:      a.logger,
	})
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: %s://%s/health\n", scheme, cfg.Server.ListenAddress)
	if metricsPath != "" {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, metricsPath)
	}
	if cfg.Server.Auth.Enabled {
		fmt.Fprintf(out, "✓ API key authentication enabled (%d keys)\n", len(cfg.Server.Auth.Keys))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}
