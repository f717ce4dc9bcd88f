package config

import (
	"os"
	"sync"
)

// DefaultFile is the configuration file looked up in the working directory
// when no path is given.
const DefaultFile = "lumen.yaml"

// PathEnv names the environment variable that points at a config file.
const PathEnv = "LUMEN_CONFIG"

var (
	mu       sync.RWMutex
	current  *Config
	loadedAt string
	initOnce sync.Once
)

// ResolvePath picks the config file to load: path when set, then $LUMEN_CONFIG,
// then ./lumen.yaml if it exists. An empty result means defaults only.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// Initialize loads the process-wide configuration from ResolvePath(path)
// with environment overrides. Only the first call loads; later calls return
// nil without reading anything.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		resolved := ResolvePath(path)
		cfg, err := LoadConfigWithEnvOverrides(resolved)
		if err != nil {
			initErr = err
			return
		}

		mu.Lock()
		current, loadedAt = cfg, resolved
		mu.Unlock()
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize or SetConfig.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Path returns the file the configuration was loaded from. It is empty for
// defaults and for configurations installed with SetConfig.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return loadedAt
}

// SetConfig replaces the process-wide configuration. Tests use it to inject
// a configuration without touching the filesystem.
func SetConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	current, loadedAt = cfg, ""
}
