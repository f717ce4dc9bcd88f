/*
Package cli provides the output formatting and process helpers used by the
lumen command.

Output Formatting:

Command results are rendered as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, cli.ScanReport{Result: res}); err != nil {
		return err
	}

Values that implement TextRenderer or Table control their own text and CSV
rendering. ScanReport, RuleTable and ScanTable cover the lumen commands.

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "Scanning")
	progress.Start(int64(len(files)))
	for i, f := range files {
		scanFile(f)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps a command error to a process exit code. Scans that cross the
--fail-on threshold return an *ExitError with ExitFindings so CI can tell
accessibility failures apart from operational errors.
*/
package cli
