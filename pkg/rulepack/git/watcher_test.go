package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"a11y-hq/lumen/pkg/rulepack"
)

func TestSource_Load(t *testing.T) {
	source := t.TempDir()
	createTestRepo(t, source)

	repo, err := NewRepository(testConfig(t, source))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	src := NewSource(repo, nil)

	if src.Name() != "git:"+source+"@master" {
		t.Errorf("Name() = %q", src.Name())
	}

	packs, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(packs) != 1 || packs[0].Rules[0].ID != "Base" {
		t.Errorf("Load() = %+v", packs)
	}
}

func TestWatcher_ForceCheckReloads(t *testing.T) {
	source := t.TempDir()
	upstream := createTestRepo(t, source)
	r := clonedRepo(t, source)

	var reloads atomic.Int32
	w := NewWatcher(r, time.Hour, func(ctx context.Context) error {
		reloads.Add(1)
		return nil
	}, nil)

	if err := w.ForceCheck(context.Background()); !errors.Is(err, ErrWatcherStopped) {
		t.Errorf("ForceCheck() before Start error = %v", err)
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(context.Background()); !errors.Is(err, ErrWatcherRunning) {
		t.Errorf("second Start() error = %v", err)
	}

	// Non-pack change: no reload, SHA still advances.
	docs := commitFile(t, upstream, source, "README.md", "docs", "docs")
	if err := w.ForceCheck(context.Background()); err != nil {
		t.Fatalf("ForceCheck() error = %v", err)
	}
	if reloads.Load() != 0 || w.LastCommitSHA() != docs {
		t.Errorf("after docs commit reloads = %d, sha = %s", reloads.Load(), w.LastCommitSHA())
	}

	packs := commitFile(t, upstream, source, "packs/new.yaml", basePack, "pack")
	if err := w.ForceCheck(context.Background()); err != nil {
		t.Fatalf("ForceCheck() error = %v", err)
	}
	if reloads.Load() != 1 || w.LastCommitSHA() != packs {
		t.Errorf("after pack commit reloads = %d, sha = %s", reloads.Load(), w.LastCommitSHA())
	}

	stats := w.Stats()
	if stats.SuccessfulReloads != 1 || stats.SkippedPolls != 1 || stats.Polls != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWatcher_RollsBackRejectedPacks(t *testing.T) {
	source := t.TempDir()
	upstream := createTestRepo(t, source)
	r := clonedRepo(t, source)

	good, err := r.CurrentCommit()
	if err != nil {
		t.Fatalf("CurrentCommit() error = %v", err)
	}

	loader := rulepack.NewLoader(nil)
	w := NewWatcher(r, time.Hour, func(ctx context.Context) error {
		packs, err := loader.LoadDirectory(r.PackPath())
		if err != nil {
			return err
		}
		_, err = rulepack.Compile(packs)
		return err
	}, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	commitFile(t, upstream, source, "packs/broken.yaml", "rules:\n  - id: Broken\n", "broken pack")

	err = w.ForceCheck(context.Background())
	var packErr *rulepack.PackError
	if !errors.As(err, &packErr) {
		t.Fatalf("ForceCheck() error = %v, want *rulepack.PackError", err)
	}

	if w.LastCommitSHA() != good.SHA {
		t.Errorf("LastCommitSHA() = %s, want last good %s", w.LastCommitSHA(), good.SHA)
	}
	if _, err := os.Stat(filepath.Join(r.PackPath(), "broken.yaml")); !os.IsNotExist(err) {
		t.Errorf("broken.yaml present after rollback: %v", err)
	}

	stats := w.Stats()
	if stats.FailedReloads != 1 || stats.Rollbacks != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWatcher_StopWhenIdle(t *testing.T) {
	r, err := NewRepository(testConfig(t, "/unused"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	w := NewWatcher(r, time.Second, func(context.Context) error { return nil }, nil)
	if err := w.Stop(); !errors.Is(err, ErrWatcherStopped) {
		t.Errorf("Stop() error = %v, want ErrWatcherStopped", err)
	}
	if err := w.Start(context.Background()); !errors.Is(err, ErrNotCloned) {
		t.Errorf("Start() on uncloned repo error = %v, want ErrNotCloned", err)
	}
}
