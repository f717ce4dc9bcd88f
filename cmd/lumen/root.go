package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/cli"
	"a11y-hq/lumen/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Lumen - accessibility rule evaluation for UI element trees",
	Long: `Lumen evaluates accessibility rules against snapshots of UI element trees.

Rules come from the built-in library and from declarative YAML rule packs,
loaded from disk or a Git repository. Every rule yields a verdict for every
element: Pass, Error, Open (needs review), NotApplicable or ExecutionError.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: $"+config.PathEnv+" or ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
