package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/results"
	"a11y-hq/lumen/pkg/results/retention"
)

var resultsFlags struct {
	target       string
	status       string
	rule         string
	since        string
	until        string
	minFailures  int
	limit        int
	offset       int
	sortBy       string
	sortOrder    string
	format       string
	output       string
	failuresOnly bool
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query stored scan results",
	Long: `Query, export and prune scan results kept in the configured storage
backend (scans are stored by 'lumen scan --store' and by the API server).

Subcommands:
  list    - List stored scans with filters
  show    - Show one scan with its findings
  delete  - Delete scans by ID
  prune   - Apply the retention policy now

Examples:
  # Scans of one target since June
  lumen results list --target window.yaml --since 2026-06-01T00:00:00Z

  # Scans that failed a given rule, worst first
  lumen results list --rule NameNotNull --sort failures --order desc

  # Export one scan's failures as CSV
  lumen results show 5c1e... --failures-only --format csv -o failures.csv`,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scans",
	Args:  cobra.NoArgs,
	RunE:  listResults,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show SCAN_ID",
	Short: "Show one scan with its findings",
	Args:  cobra.ExactArgs(1),
	RunE:  showResult,
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete SCAN_ID...",
	Short: "Delete stored scans",
	Args:  cobra.MinimumNArgs(1),
	RunE:  deleteResults,
}

var resultsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete scans outside the retention policy",
	Long: `Delete scans older than retention.days and, when retention.max_scans is
set, the oldest scans beyond that count. Scans are archived to
retention.archive_path first when it is configured.`,
	Args: cobra.NoArgs,
	RunE: pruneResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsDeleteCmd, resultsPruneCmd)

	resultsCmd.PersistentFlags().StringVarP(&resultsFlags.format, "format", "f", "text", "output format: text, json, csv")
	resultsCmd.PersistentFlags().StringVarP(&resultsFlags.output, "output", "o", "", "output file (default: stdout)")

	resultsListCmd.Flags().StringVar(&resultsFlags.target, "target", "", "filter by target")
	resultsListCmd.Flags().StringVar(&resultsFlags.status, "status", "", "filter by status: completed, cancelled, failed")
	resultsListCmd.Flags().StringVar(&resultsFlags.rule, "rule", "", "only scans with a failing verdict for this rule")
	resultsListCmd.Flags().StringVar(&resultsFlags.since, "since", "", "started at or after (RFC3339)")
	resultsListCmd.Flags().StringVar(&resultsFlags.until, "until", "", "started before (RFC3339)")
	resultsListCmd.Flags().IntVar(&resultsFlags.minFailures, "min-failures", 0, "minimum number of Error and Open verdicts")
	resultsListCmd.Flags().IntVar(&resultsFlags.limit, "limit", results.DefaultLimit, "max results")
	resultsListCmd.Flags().IntVar(&resultsFlags.offset, "offset", 0, "pagination offset")
	resultsListCmd.Flags().StringVar(&resultsFlags.sortBy, "sort", results.SortStartedAt, "sort by: started_at, duration, failures, elements")
	resultsListCmd.Flags().StringVar(&resultsFlags.sortOrder, "order", results.SortDesc, "sort order: asc, desc")

	resultsShowCmd.Flags().BoolVar(&resultsFlags.failuresOnly, "failures-only", false, "only report Error and Open findings")
}

func buildResultsQuery() (*results.Query, error) {
	q := &results.Query{
		Target:    resultsFlags.target,
		Status:    resultsFlags.status,
		RuleID:    resultsFlags.rule,
		Limit:     resultsFlags.limit,
		Offset:    resultsFlags.offset,
		SortBy:    resultsFlags.sortBy,
		SortOrder: resultsFlags.sortOrder,
	}
	if resultsFlags.minFailures > 0 {
		n := resultsFlags.minFailures
		q.MinFailures = &n
	}
	if resultsFlags.since != "" {
		t, err := time.Parse(time.RFC3339, resultsFlags.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		q.StartTime = &t
	}
	if resultsFlags.until != "" {
		t, err := time.Parse(time.RFC3339, resultsFlags.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		q.EndTime = &t
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func listResults(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(resultsFlags.format)
	if err != nil {
		return err
	}
	query, err := buildResultsQuery()
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStorage()
	if err != nil {
		return cli.NewCommandError("results list", err)
	}
	defer store.Close()

	ctx := commandContext(cmd)
	list, err := store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("results list", err)
	}

	out, closeOut, err := openOutput(cmd, resultsFlags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := cli.NewFormatter(format).FormatTo(out, cli.ScanTable(list)); err != nil {
		return err
	}
	if format == cli.FormatText {
		total, err := store.Count(ctx, query)
		if err != nil {
			return cli.NewCommandError("results list", err)
		}
		fmt.Fprintf(out, "\nShowing %d of %d scans\n", len(list), total)
	}
	return nil
}

func showResult(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(resultsFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStorage()
	if err != nil {
		return cli.NewCommandError("results show", err)
	}
	defer store.Close()

	res, err := store.Get(commandContext(cmd), args[0])
	if errors.Is(err, results.ErrNotFound) {
		return fmt.Errorf("scan %q not found", args[0])
	}
	if err != nil {
		return cli.NewCommandError("results show", err)
	}

	out, closeOut, err := openOutput(cmd, resultsFlags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	return cli.NewFormatter(format).FormatTo(out, cli.ScanReport{Result: res, FailuresOnly: resultsFlags.failuresOnly})
}

func deleteResults(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStorage()
	if err != nil {
		return cli.NewCommandError("results delete", err)
	}
	defer store.Close()

	n, err := store.Delete(commandContext(cmd), args...)
	if err != nil {
		return cli.NewCommandError("results delete", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d of %d scans\n", n, len(args))
	if n < int64(len(args)) {
		return cli.NewExitError(cli.ExitFindings, "%d scans not found", int64(len(args))-n)
	}
	return nil
}

func pruneResults(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStorage()
	if err != nil {
		return cli.NewCommandError("results prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &a.cfg.Retention, a.logger)
	n, err := pruner.Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("results prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d scans\n", n)
	return nil
}
