package rulepack

import (
	"time"

	"a11y-hq/lumen/pkg/config"
)

// CurrentVersion is the pack file format version this package reads.
const CurrentVersion = 1

// Pack is one decoded rule pack file.
//
//	version: 1
//	language: expr
//	rules:
//	  - id: HyperlinkHasName
//	    description: Hyperlinks must have a name
//	    standard: WCAG 2.4.4
//	    property: Name
//	    failure: error
//	    condition: {control_type: Hyperlink}
//	    pass_when: {property: {name: Name, matches: "\\S"}}
type Pack struct {
	// Source is the file the pack was read from.
	Source string `yaml:"-"`

	// Version is the pack format version. Zero means CurrentVersion.
	Version int `yaml:"version"`

	// Language is the default expression language for bare string nodes.
	Language string `yaml:"language"`

	// Rules are the rule specifications in file order.
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec declares one rule.
type RuleSpec struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	HowToFix    string `yaml:"how_to_fix"`
	Standard    string `yaml:"standard"`
	Property    string `yaml:"property"`

	// Failure is the verdict reported when PassWhen is false: "error" or "open".
	Failure string `yaml:"failure"`

	// Language overrides the pack language for this rule.
	Language string `yaml:"language"`

	// Condition selects the elements the rule applies to.
	Condition any `yaml:"condition"`

	// PassWhen is the test applied to matching elements.
	PassWhen any `yaml:"pass_when"`

	// Line is the 1-based line of the rule in its file, when known.
	Line int `yaml:"-"`
}

// LoaderConfig contains configuration for the pack loader.
type LoaderConfig struct {
	// MaxFileSize is the largest accepted pack file in bytes.
	MaxFileSize int64

	// AllowedExtensions filters files when loading a directory.
	AllowedExtensions []string

	// SkipHidden skips files and directories whose names start with a dot.
	SkipHidden bool

	// FollowSymlinks follows symbolic links when walking directories.
	FollowSymlinks bool

	// Language is the default expression language for packs that do not set one.
	Language string
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       config.DefaultRulesMaxFileSize,
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
		FollowSymlinks:    true,
		Language:          config.DefaultRulesLanguage,
	}
}

// LoaderConfigFrom derives a loader configuration from the rules section of
// the application config.
func LoaderConfigFrom(cfg *config.RulesConfig) *LoaderConfig {
	lc := DefaultLoaderConfig()
	if cfg.MaxFileSize > 0 {
		lc.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.Language != "" {
		lc.Language = cfg.Language
	}
	return lc
}

// WatcherConfig contains configuration for the file watcher.
type WatcherConfig struct {
	// Paths are the files or directories to watch.
	Paths []string

	// DebounceInterval is the quiet period before a reload is triggered.
	DebounceInterval time.Duration

	// Extensions are the file extensions that trigger reloads.
	Extensions []string

	// SkipHidden ignores events on hidden files.
	SkipHidden bool
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: config.DefaultRulesWatchDebounce,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}
