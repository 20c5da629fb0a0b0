// Package cli implements the runmap command-line interface.
//
// # Commands
//
//   - generate: build a map and write its JSON export
//   - render: draw a map as svg, png, pdf, dot, json or txt
//   - show: print a map as a table of layers
//   - stats: generate many maps and summarise them
//   - walk: traverse a map interactively, optionally as a saved run
//   - run: manage saved runs
//   - cache: manage the artifact cache
//
// All commands support --verbose (-v) for debug-level logging and
// --config to point at a settings file.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/buildinfo"
	"github.com/matzehuels/runmap/pkg/cache"
	"github.com/matzehuels/runmap/pkg/config"
	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/pipeline"
	"github.com/matzehuels/runmap/pkg/runstore"
)

// appName is the application name used for display.
const appName = "runmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Runmap generates roguelike run maps",
		Long:         `Runmap generates layered encounter maps for roguelike runs: reproducible from a seed, balanced by placement rules, and ready to render or walk.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $RUNMAP_CONFIG, ./runmap.toml, ~/.config/runmap/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.walkCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.configPath != "" {
		cfg, path, err = config.LoadFromPath(c.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys are scoped by the
// generator version so an algorithm change never serves stale maps.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, fmt.Sprintf("gen%d:", mapgen.Version))
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := c.cfg.Cache.RedisAddr; addr != "" {
		c.Logger.Debug("using redis cache", "addr", addr, "db", c.cfg.Cache.RedisDB)
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: addr, DB: c.cfg.Cache.RedisDB})
	}
	dir, err := c.cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) openStore() (*runstore.Store, error) {
	path, err := c.cfg.StorePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return runstore.Open(path, c.Logger)
}
