package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/rulepack"
	"a11y-hq/lumen/pkg/rulepack/git"
	"a11y-hq/lumen/pkg/telemetry/logging"
	"a11y-hq/lumen/pkg/telemetry/metrics"
)

// Reload triggers, used as a metric label.
const (
	TriggerStartup = "startup"
	TriggerFile    = "file"
	TriggerGit     = "git"
	TriggerManual  = "manual"
)

var (
	// ErrWatchRunning is returned when Watch is called twice.
	ErrWatchRunning = errors.New("catalog watch already started")

	// ErrNothingToWatch is returned by Watch when no watchable source is configured.
	ErrNothingToWatch = errors.New("no rule sources to watch")
)

// Status describes the active rule set.
type Status struct {
	Version   string         `json:"version"`
	Rules     int            `json:"rules"`
	ByOrigin  map[string]int `json:"by_origin"`
	LoadTime  time.Time      `json:"load_time"`
	LastError string         `json:"last_error,omitempty"`
}

// Manager owns the active rule Set. It loads rules from the library and the
// configured packs, swaps in a new Set atomically on reload, and keeps the
// previous Set when a reload fails.
type Manager struct {
	config  *config.RulesConfig
	loader  *rulepack.Loader
	sources []rulepack.Source
	logger  *logging.Logger
	metrics *metrics.Collector

	gitRepo    *git.Repository
	gitWatcher *git.Watcher

	mu            sync.RWMutex
	set           *Set
	lastLoadError error

	// reloadMu serialises reloads.
	reloadMu sync.Mutex

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
}

// NewManager creates a manager for cfg. No rules are loaded until Load.
// logger and collector may be nil.
func NewManager(cfg *config.RulesConfig, logger *logging.Logger, collector *metrics.Collector) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("rules config cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	loader := rulepack.NewLoader(rulepack.LoaderConfigFrom(cfg))

	m := &Manager{
		config:  cfg,
		loader:  loader,
		logger:  logger.WithComponent("catalog"),
		metrics: collector,
		set:     EmptySet(),
	}

	if len(cfg.Packs) > 0 {
		m.sources = append(m.sources, rulepack.NewFileSource(cfg.Packs, loader))
	}

	if cfg.Git.Enabled {
		repo, err := git.NewRepository(&cfg.Git)
		if err != nil {
			return nil, fmt.Errorf("failed to create git repository: %w", err)
		}
		m.gitRepo = repo
		m.sources = append(m.sources, git.NewSource(repo, loader))

		if cfg.Git.Poll.Enabled {
			m.gitWatcher = git.NewWatcher(repo, cfg.Git.Poll.Interval, func(ctx context.Context) error {
				return m.Reload(ctx, TriggerGit)
			}, logger)
		}
	}

	return m, nil
}

// Load performs the initial load.
func (m *Manager) Load(ctx context.Context) error {
	return m.Reload(ctx, TriggerStartup)
}

// Reload rebuilds the rule set from all sources and swaps it in. On any
// error the active set is left untouched.
func (m *Manager) Reload(ctx context.Context, trigger string) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := time.Now()
	result, err := m.build(ctx)
	if err != nil {
		m.mu.Lock()
		m.lastLoadError = err
		m.mu.Unlock()

		m.metrics.RecordRuleReload(trigger, false)
		m.logger.Error("failed to load rules, keeping previous set",
			"trigger", trigger,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	for _, id := range result.UnknownDisabled {
		m.logger.Warn("disabled rule does not exist", "rule_id", id)
	}

	m.mu.Lock()
	m.set = result.Set
	m.lastLoadError = nil
	m.mu.Unlock()

	counts := result.Set.CountByOrigin()
	for origin, n := range counts {
		m.metrics.SetRulesLoaded(origin, n)
	}
	m.metrics.RecordRuleReload(trigger, true)

	m.logger.Info("rules loaded",
		"trigger", trigger,
		"count", result.Set.Len(),
		"builtin", counts[SourceBuiltin],
		"pack", counts[SourcePack],
		"version", result.Set.Version(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Validate loads and builds the rule set without activating it.
func (m *Manager) Validate(ctx context.Context) (*BuildResult, error) {
	return m.build(ctx)
}

func (m *Manager) build(ctx context.Context) (*BuildResult, error) {
	packs, err := rulepack.LoadAll(ctx, m.sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule packs: %w", err)
	}

	compiled, err := rulepack.Compile(packs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rule packs: %w", err)
	}

	return Build(BuildOptions{Builtin: m.config.Builtin, Disabled: m.config.Disabled}, compiled)
}

// Snapshot returns the active rule set.
func (m *Manager) Snapshot() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set
}

// Get returns an active rule by ID.
func (m *Manager) Get(id string) (*rule.Rule, bool) {
	return m.Snapshot().Get(id)
}

// Status describes the active rule set and the last load error.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		Version:  m.set.Version(),
		Rules:    m.set.Len(),
		ByOrigin: m.set.CountByOrigin(),
		LoadTime: m.set.LoadTime(),
	}
	if m.lastLoadError != nil {
		st.LastError = m.lastLoadError.Error()
	}
	return st
}

// Watch reloads rules as their sources change until ctx is cancelled. It
// watches pack paths with fsnotify when Watch is enabled in the config, and
// polls the Git repository when polling is enabled.
func (m *Manager) Watch(ctx context.Context) error {
	m.watchMu.Lock()
	if m.watchCancel != nil {
		m.watchMu.Unlock()
		return ErrWatchRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchMu.Unlock()
	defer cancel()

	watching := false

	if m.gitWatcher != nil {
		if err := m.gitWatcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start git watcher: %w", err)
		}
		defer func() {
			if err := m.gitWatcher.Stop(); err != nil && !errors.Is(err, git.ErrWatcherStopped) {
				m.logger.Error("failed to stop git watcher", "error", err)
			}
		}()
		watching = true
	}

	if m.config.Watch && len(m.config.Packs) > 0 {
		wcfg := rulepack.DefaultWatcherConfig()
		wcfg.Paths = m.config.Packs
		if m.config.WatchDebounce > 0 {
			wcfg.DebounceInterval = m.config.WatchDebounce
		}

		fw, err := rulepack.NewFileWatcher(wcfg, m.logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer fw.Stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- fw.Watch(ctx, func() error {
				return m.Reload(ctx, TriggerFile)
			})
		}()
		watching = true

		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		}
	}

	if !watching {
		return ErrNothingToWatch
	}

	<-ctx.Done()
	return nil
}

// GitRepository returns the Git repository backing the catalog, if any.
func (m *Manager) GitRepository() *git.Repository {
	return m.gitRepo
}

// Close stops any running watch.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	return nil
}
