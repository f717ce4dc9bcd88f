package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetGlobal() {
	mu.Lock()
	current, loadedAt = nil, ""
	mu.Unlock()
	initOnce = sync.Once{}
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	path := writeConfig(t, "server:\n  listen_address: 127.0.0.1:9999\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:9999", cfg.Server.ListenAddress)
	}
	if Path() != path {
		t.Errorf("Path() = %q, want %q", Path(), path)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	first := writeConfig(t, "scan:\n  workers: 3\n")
	second := writeConfig(t, "scan:\n  workers: 9\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("second initialize returned error: %v", err)
	}
	if got := GetConfig().Scan.Workers; got != 3 {
		t.Errorf("expected first config to win, got workers %d", got)
	}
}

func TestInitialize_Invalid(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	if err := Initialize(writeConfig(t, "scan:\n  workers: -4\n")); err == nil {
		t.Fatal("expected error for invalid config")
	}
	if GetConfig() != nil {
		t.Error("failed initialize must not install a config")
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv(PathEnv, "")
	if got := ResolvePath(""); got != "" {
		t.Errorf("no file: ResolvePath() = %q, want empty", got)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ResolvePath(""); got != DefaultFile {
		t.Errorf("default file: ResolvePath() = %q", got)
	}

	t.Setenv(PathEnv, "/etc/lumen/lumen.yaml")
	if got := ResolvePath(""); got != "/etc/lumen/lumen.yaml" {
		t.Errorf("env: ResolvePath() = %q", got)
	}
	if got := ResolvePath("custom.yaml"); got != "custom.yaml" {
		t.Errorf("explicit: ResolvePath() = %q", got)
	}
}

func TestSetConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	cfg := Default()
	SetConfig(cfg)
	if GetConfig() != cfg {
		t.Error("expected SetConfig to replace the global config")
	}
	if Path() != "" {
		t.Errorf("Path() = %q after SetConfig", Path())
	}
}
