package rulepack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"a11y-hq/lumen/pkg/telemetry/logging"
)

// ErrWatcherRunning is returned when Watch is called on a running watcher.
var ErrWatcherRunning = errors.New("watcher already running")

// FileWatcher watches pack files for changes and triggers reloads.
// Bursts of events are debounced into a single reload.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	config   *WatcherConfig
	debounce *Debouncer

	// files holds explicitly watched files; their parent directories are
	// watched so that atomic renames by editors are seen.
	files map[string]bool
	dirs  []string

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *WatcherConfig, logger *logging.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger.WithComponent("rulepack.watcher"),
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		files:    make(map[string]bool),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, invoking onReload
// after each debounced burst of relevant file events. A failed reload is
// logged and watching continues.
func (fw *FileWatcher) Watch(ctx context.Context, onReload func() error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return ErrWatcherRunning
	}
	fw.running = true
	fw.mu.Unlock()

	defer close(fw.doneCh)

	for _, p := range fw.config.Paths {
		if err := fw.addPath(p); err != nil {
			return fmt.Errorf("failed to watch %q: %w", p, err)
		}
	}

	fw.logger.Info("rule pack watcher started",
		"paths", fw.config.Paths,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("rule pack watcher stopped", "reason", "context cancelled")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("rule pack watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			// New subdirectories must be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectory(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			fw.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			name, op := event.Name, event.Op.String()
			fw.debounce.Trigger(func() {
				fw.logger.Info("reloading rule packs", "path", name, "op", op)
				if err := onReload(); err != nil {
					fw.logger.Error("rule pack reload failed", "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for Watch to return. It is safe to call
// more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		close(fw.stopCh)

		fw.mu.Lock()
		running := fw.running
		fw.mu.Unlock()
		if running {
			<-fw.doneCh
		}

		fw.debounce.Stop()
		if cerr := fw.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		fw.dirs = append(fw.dirs, abs)
		return fw.addDirectory(abs)
	}

	fw.files[abs] = true
	return fw.watcher.Add(filepath.Dir(abs))
}

// addDirectory adds dir and all its subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if fw.config.SkipHidden && isHidden(d.Name()) && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

// shouldProcessEvent determines if an event should trigger a reload.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if fw.config.SkipHidden && isHidden(filepath.Base(event.Name)) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if fw.files[abs] {
		return true
	}
	if !fw.underDirectory(abs) {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return true
		}
	}
	return hasExtension(abs, fw.config.Extensions)
}

// underDirectory reports whether path lies under a watched directory.
func (fw *FileWatcher) underDirectory(path string) bool {
	for _, dir := range fw.dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Debouncer collects rapid events and runs the latest callback once the
// interval has passed without a new event.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger records an event. callback replaces any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
