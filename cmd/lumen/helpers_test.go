package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"a11y-hq/lumen/pkg/config"
)

// useConfig installs a test configuration as the global config. Results go
// to a SQLite database in a temporary directory.
func useConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "lumen.db")
	cfg.Telemetry.Metrics.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(nil) })
	return cfg
}

// capture points cmd's output at a buffer and discards its logs.
func capture(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	return buf
}

func resetScanFlags(t *testing.T) {
	t.Helper()
	old := scanFlags
	scanFlags.format = "text"
	scanFlags.rules = nil
	scanFlags.target = ""
	scanFlags.output = ""
	scanFlags.failOn = ""
	scanFlags.workers = 0
	scanFlags.includeNotApplicable = false
	scanFlags.failuresOnly = false
	scanFlags.store = false
	scanFlags.watch = false
	scanFlags.progress = false
	t.Cleanup(func() { scanFlags = old })
}
