package git

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"a11y-hq/lumen/pkg/rulepack"
	"a11y-hq/lumen/pkg/telemetry/logging"
)

// DefaultReloadDebounce is the quiet period between detecting new commits
// and reloading.
const DefaultReloadDebounce = 100 * time.Millisecond

var (
	// ErrWatcherRunning is returned by Start on a running watcher.
	ErrWatcherRunning = errors.New("watcher already running")

	// ErrWatcherStopped is returned by operations on a stopped watcher.
	ErrWatcherStopped = errors.New("watcher not running")
)

// ReloadFunc reloads rules from the repository's current checkout. A
// returned error causes the checkout to roll back to the last good commit.
type ReloadFunc func(ctx context.Context) error

// Watcher polls a repository and reloads rules when pack files change.
type Watcher struct {
	repo     *Repository
	interval time.Duration
	reload   ReloadFunc
	logger   *logging.Logger
	debounce *rulepack.Debouncer

	mu            sync.RWMutex
	running       bool
	lastCommitSHA string
	stats         WatcherStats
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// NewWatcher creates a watcher polling repo every interval.
func NewWatcher(repo *Repository, interval time.Duration, reload ReloadFunc, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		repo:     repo,
		interval: interval,
		reload:   reload,
		logger:   logger.WithComponent("rulepack.git"),
		debounce: rulepack.NewDebouncer(DefaultReloadDebounce),
	}
}

// Start records the current commit as known good and begins polling in the
// background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrWatcherRunning
	}

	commit, err := w.repo.CurrentCommit()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	w.lastCommitSHA = commit.SHA
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("git watcher started", "poll_interval", w.interval, "commit", commit.Short())

	go w.pollLoop(ctx)
	return nil
}

// Stop halts polling and cancels any pending reload.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	w.debounce.Stop()
	w.logger.Info("git watcher stopped")
	return nil
}

// IsRunning reports whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if err := w.checkForChanges(ctx, true); err != nil {
				w.logger.Error("error checking for rule changes", "error", err)
			}
		}
	}
}

// checkForChanges pulls and, when pack files changed, reloads either after
// the debounce interval or immediately.
func (w *Watcher) checkForChanges(ctx context.Context, debounced bool) error {
	w.mu.Lock()
	w.stats.Polls++
	w.mu.Unlock()

	result, err := w.repo.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull: %w", err)
	}
	if !result.HadChanges {
		return nil
	}

	w.logger.Info("detected new commits",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	if !hasPackChanges(result.ChangedFiles) {
		w.mu.Lock()
		w.stats.SkippedPolls++
		w.lastCommitSHA = result.ToSHA
		w.mu.Unlock()
		w.logger.Debug("no pack files changed, skipping reload")
		return nil
	}

	if !debounced {
		return w.performReload(ctx, result.ToSHA)
	}

	sha := result.ToSHA
	w.debounce.Trigger(func() {
		if err := w.performReload(ctx, sha); err != nil {
			w.logger.Error("rule reload failed", "error", err)
		}
	})
	return nil
}

// performReload runs the reload callback, rolling back to the last good
// commit on failure.
func (w *Watcher) performReload(ctx context.Context, newSHA string) error {
	start := time.Now()

	w.mu.RLock()
	lastGood := w.lastCommitSHA
	w.mu.RUnlock()

	err := w.reload(ctx)

	w.mu.Lock()
	w.stats.LastReloadTime = time.Now()
	w.stats.LastReloadDur = time.Since(start)
	if err == nil {
		w.stats.SuccessfulReloads++
		w.lastCommitSHA = newSHA
	} else {
		w.stats.FailedReloads++
	}
	w.mu.Unlock()

	if err == nil {
		w.logger.Info("rules reloaded", "from_sha", shortSHA(lastGood), "to_sha", shortSHA(newSHA))
		return nil
	}

	w.logger.Error("rule packs rejected, rolling back",
		"error", err,
		"sha", shortSHA(newSHA),
		"rollback_to", shortSHA(lastGood))

	if rbErr := w.rollback(ctx, lastGood); rbErr != nil {
		return fmt.Errorf("reload failed: %w (rollback: %v)", err, rbErr)
	}
	return fmt.Errorf("reload failed, rolled back to %s: %w", shortSHA(lastGood), err)
}

func (w *Watcher) rollback(ctx context.Context, sha string) error {
	if err := w.repo.Rollback(ctx, sha); err != nil {
		return err
	}
	w.mu.Lock()
	w.stats.Rollbacks++
	w.mu.Unlock()
	return w.reload(ctx)
}

// ForceCheck pulls and reloads immediately, without waiting for the next
// poll or the debounce interval.
func (w *Watcher) ForceCheck(ctx context.Context) error {
	if !w.IsRunning() {
		return ErrWatcherStopped
	}
	return w.checkForChanges(ctx, false)
}

// LastCommitSHA returns the commit rules were last loaded from.
func (w *Watcher) LastCommitSHA() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastCommitSHA
}

// Stats returns a copy of the watcher counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func hasPackChanges(files []string) bool {
	for _, f := range files {
		if isPackFile(f) {
			return true
		}
	}
	return false
}
