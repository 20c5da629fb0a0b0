// Package config loads runmap settings from a TOML or YAML file.
//
// Config file locations (priority order):
//  1. $RUNMAP_CONFIG
//  2. ./runmap.toml, then ./runmap.yaml
//  3. $XDG_CONFIG_HOME/runmap/config.toml
//  4. ~/.config/runmap/config.toml
//
// With no file, [Default] applies. Values missing from a file keep their
// defaults, and command-line flags override both.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/render"
)

// Config is the complete file configuration.
type Config struct {
	Map    mapgen.Config `toml:"map" yaml:"map"`
	Cache  CacheConfig   `toml:"cache" yaml:"cache"`
	Store  StoreConfig   `toml:"store" yaml:"store"`
	Render RenderConfig  `toml:"render" yaml:"render"`
}

// CacheConfig selects the cache backend. A non-empty RedisAddr selects Redis,
// otherwise the file cache in Dir is used.
type CacheConfig struct {
	Dir       string        `toml:"dir" yaml:"dir"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int           `toml:"redis_db" yaml:"redis_db"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl"`
}

// StoreConfig locates the run database.
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Formats  []string `toml:"formats" yaml:"formats"`
	Engine   string   `toml:"engine" yaml:"engine"`
	Scale    float64  `toml:"scale" yaml:"scale"`
	Detailed bool     `toml:"detailed" yaml:"detailed"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Map: mapgen.DefaultConfig(),
		Render: RenderConfig{
			Formats: []string{"svg"},
			Engine:  string(render.EngineNeato),
			Scale:   2.0,
		},
	}
}

// Load finds and loads the config file, or returns defaults if none is
// found. The second result is the path that was loaded.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return Default(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config at path. The format follows the extension:
// .toml, or .yaml/.yml.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	cfg, err := Parse(data, filepath.Ext(path))
	return cfg, path, err
}

// Parse decodes data in the format named by ext over the defaults and
// validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml or .yaml)", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Map.Validate(); err != nil {
		return err
	}
	if _, err := render.ParseEngine(c.Render.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.engine")
	}
	if c.Render.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.scale must not be negative, got %g", c.Render.Scale)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must not be negative, got %d", c.Cache.RedisDB)
	}
	return nil
}
