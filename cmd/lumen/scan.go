package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/catalog"
	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/element"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/rulepack"
	"a11y-hq/lumen/pkg/scan"
)

var scanFlags struct {
	rules                []string
	target               string
	format               string
	output               string
	failOn               string
	workers              int
	includeNotApplicable bool
	failuresOnly         bool
	store                bool
	watch                bool
	progress             bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [flags] SNAPSHOT...",
	Short: "Evaluate rules against element tree snapshots",
	Long: `Evaluate the active rules against one or more element tree snapshots.

Snapshots are YAML or JSON files (chosen by extension) describing a tree of
elements with control types, patterns and properties. The command exits with
status 1 when any scan crosses the --fail-on threshold:
  error  - any Error verdict (default)
  open   - any Error or Open verdict
  never  - never fail

Examples:
  # Scan one snapshot with the built-in rules
  lumen scan window.yaml

  # Only run two rules and print JSON
  lumen scan --rules NameNotNull,ListItemParentIsList --format json window.yaml

  # Store results and export failures as CSV
  lumen scan --store --failures-only --format csv -o failures.csv snapshots/*.json

  # Re-scan whenever the snapshot or a rule pack changes
  lumen scan --watch window.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVarP(&scanFlags.rules, "rules", "r", nil, "only evaluate these rule IDs")
	scanCmd.Flags().StringVar(&scanFlags.target, "target", "", "label stored with the result (default: snapshot path)")
	scanCmd.Flags().StringVarP(&scanFlags.format, "format", "f", "text", "output format: text, json, csv")
	scanCmd.Flags().StringVarP(&scanFlags.output, "output", "o", "", "output file (default: stdout)")
	scanCmd.Flags().StringVar(&scanFlags.failOn, "fail-on", "", "exit non-zero on: error, open, never (default from config)")
	scanCmd.Flags().IntVarP(&scanFlags.workers, "workers", "w", 0, "concurrent evaluation workers (default from config)")
	scanCmd.Flags().BoolVar(&scanFlags.includeNotApplicable, "include-not-applicable", false, "keep NotApplicable findings")
	scanCmd.Flags().BoolVar(&scanFlags.failuresOnly, "failures-only", false, "only report Error and Open findings")
	scanCmd.Flags().BoolVar(&scanFlags.store, "store", false, "store results in the configured backend")
	scanCmd.Flags().BoolVar(&scanFlags.watch, "watch", false, "re-scan when snapshots or rule packs change")
	scanCmd.Flags().BoolVar(&scanFlags.progress, "progress", false, "show progress when scanning several snapshots")
}

// scanSession scans a fixed list of snapshots, possibly repeatedly.
type scanSession struct {
	app       *app
	manager   *catalog.Manager
	runner    *scan.Runner
	store     results.Storage
	formatter cli.Formatter
	failOn    string
	paths     []string
	out       io.Writer
	errOut    io.Writer
	progress  cli.ProgressReporter
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(scanFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	failOn := scanFlags.failOn
	if failOn == "" {
		failOn = a.cfg.Scan.FailOn
	}
	switch failOn {
	case scan.FailOnError, scan.FailOnOpen, scan.FailOnNever:
	default:
		return fmt.Errorf("invalid --fail-on %q (supported: error, open, never)", failOn)
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	manager, err := a.loadCatalog(ctx)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	defer manager.Close()

	s := &scanSession{
		app:       a,
		manager:   manager,
		runner:    a.runner(),
		formatter: cli.NewFormatter(format),
		failOn:    failOn,
		paths:     args,
		errOut:    cmd.ErrOrStderr(),
		progress:  cli.NopProgress{},
	}
	if scanFlags.progress && len(args) > 1 {
		s.progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "Scanning")
	}

	if scanFlags.store {
		store, err := a.openStorage()
		if err != nil {
			return cli.NewCommandError("scan", err)
		}
		defer store.Close()
		s.store = store
	}

	out, closeOut, err := openOutput(cmd, scanFlags.output)
	if err != nil {
		return err
	}
	defer closeOut()
	s.out = out

	failed, err := s.scanAll(ctx)
	if err != nil {
		return err
	}

	if scanFlags.watch {
		return s.watch(ctx)
	}

	if failed > 0 {
		return cli.NewExitError(cli.ExitFindings, "%d of %d scans failed (--fail-on=%s)", failed, len(args), failOn)
	}
	return nil
}

// scanAll scans every snapshot, writes the reports and returns the number of
// scans that crossed the fail-on threshold.
func (s *scanSession) scanAll(ctx context.Context) (int, error) {
	set := s.manager.Snapshot()
	reports := make(cli.ScanReports, 0, len(s.paths))
	failed := 0

	s.progress.Start(int64(len(s.paths)))
	for i, path := range s.paths {
		res, err := s.scanOne(ctx, set, path)
		if err != nil {
			s.progress.Error(err)
			return failed, err
		}
		if res.Summary.Failed(s.failOn) {
			failed++
		}
		reports = append(reports, cli.ScanReport{Result: res, FailuresOnly: scanFlags.failuresOnly})
		s.progress.Update(int64(i + 1))
	}
	s.progress.Finish()

	if err := s.formatter.FormatTo(s.out, reports); err != nil {
		return failed, fmt.Errorf("failed to write report: %w", err)
	}
	return failed, nil
}

func (s *scanSession) scanOne(ctx context.Context, set *catalog.Set, path string) (*scan.Result, error) {
	root, err := element.LoadTree(path)
	if err != nil {
		return nil, err
	}

	opts := scan.Options{
		Target:  path,
		RuleIDs: scanFlags.rules,
		Workers: scanFlags.workers,
	}
	if scanFlags.target != "" {
		opts.Target = scanFlags.target
	}
	if scanFlags.includeNotApplicable {
		include := true
		opts.IncludeNotApplicable = &include
	}

	res, err := s.runner.Run(ctx, root, set, opts)
	if err != nil && res == nil {
		return nil, fmt.Errorf("scan of %s failed: %w", path, err)
	}

	if s.store != nil {
		storeCtx := context.WithoutCancel(ctx)
		if serr := s.store.Store(storeCtx, res); serr != nil {
			return nil, fmt.Errorf("failed to store scan of %s: %w", path, serr)
		}
		s.app.logger.Debug("scan stored", "scan_id", res.ID, "target", res.Target)
	}

	if err != nil {
		return nil, fmt.Errorf("scan of %s interrupted: %w", path, err)
	}
	return res, nil
}

// watch re-scans after every debounced change to a snapshot or rule pack
// until ctx is cancelled. Rule packs are reloaded first; a failed reload
// keeps the previous rules.
func (s *scanSession) watch(ctx context.Context) error {
	cfg := rulepack.DefaultWatcherConfig()
	cfg.Paths = append(append([]string{}, s.paths...), s.app.cfg.Rules.Packs...)
	cfg.Extensions = []string{".yaml", ".yml", ".json"}
	if d := s.app.cfg.Rules.WatchDebounce; d > 0 {
		cfg.DebounceInterval = d
	}

	fw, err := rulepack.NewFileWatcher(cfg, s.app.logger)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	defer fw.Stop()

	fmt.Fprintf(s.errOut, "Watching %d paths, press Ctrl+C to stop\n", len(cfg.Paths))

	err = fw.Watch(ctx, func() error {
		if len(s.app.cfg.Rules.Packs) > 0 || s.app.cfg.Rules.Git.Enabled {
			if err := s.manager.Reload(ctx, catalog.TriggerFile); err != nil {
				s.app.logger.Warn("rule reload failed, keeping previous rules", "error", err)
			}
		}
		_, err := s.scanAll(ctx)
		if isCancellation(err) {
			return nil
		}
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("scan", err)
	}
	return nil
}
