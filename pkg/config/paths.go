package config

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/runmap/pkg/errors"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "RUNMAP_CONFIG"
	// AppName names the XDG directories.
	AppName = "runmap"
)

// FindConfigPath searches for a config file in priority order and returns
// the empty string if none exists.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	for _, name := range []string{"runmap.toml", "runmap.yaml"} {
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, AppName, "config.toml")
		if fileExists(path) {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", AppName, "config.toml")
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// CacheDir returns the configured cache directory, defaulting to
// $XDG_CACHE_HOME/runmap or ~/.cache/runmap.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, errors.ValidatePath(c.Cache.Dir)
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// StorePath returns the configured run database path, defaulting to
// $XDG_DATA_HOME/runmap/runs.db or ~/.local/share/runmap/runs.db.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, errors.ValidatePath(c.Store.Path)
	}
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "runs.db"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "get home directory")
	}
	return filepath.Join(home, fallback, AppName), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
