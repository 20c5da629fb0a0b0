package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgen"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, mapgen.DefaultConfig(), cfg.Map)
	assert.Equal(t, []string{"svg"}, cfg.Render.Formats)
	assert.Equal(t, "neato", cfg.Render.Engine)
	require.NoError(t, cfg.Validate())
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[map]
layers = 12
max_nodes = 4
smooth = false

[map.fill_weights]
event = 50
shop = 25
card_remove = 25

[cache]
redis_addr = "localhost:6379"
ttl = "48h"

[store]
path = "/tmp/runs.db"

[render]
formats = ["svg", "png"]
engine = "dot"
`)
	cfg, err := Parse(data, ".toml")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Map.NumberOfLayers)
	assert.Equal(t, 4, cfg.Map.MaxNodesPerLayer)
	assert.Equal(t, mapgen.DefaultMinNodes, cfg.Map.MinNodesPerLayer, "unset keys keep defaults")
	assert.False(t, cfg.Map.Smooth)
	assert.Equal(t, mapgen.FillWeights{Event: 50, Shop: 25, CardRemove: 25}, cfg.Map.FillWeights)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 48*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/runs.db", cfg.Store.Path)
	assert.Equal(t, []string{"svg", "png"}, cfg.Render.Formats)
	assert.Equal(t, "dot", cfg.Render.Engine)
	assert.Equal(t, 2.0, cfg.Render.Scale)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
map:
  layers: 10
  branch_chance: 30
render:
  detailed: true
`)
	cfg, err := Parse(data, ".yml")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Map.NumberOfLayers)
	assert.Equal(t, 30, cfg.Map.BranchChance)
	assert.True(t, cfg.Render.Detailed)
	assert.Equal(t, mapgen.DefaultLayerSpacing, cfg.Map.LayerSpacing)
}

func TestParseEmptyYAML(t *testing.T) {
	cfg, err := Parse(nil, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"bad toml", "[map\nlayers = 1", ".toml"},
		{"unknown toml key", "[map]\nlayer = 9", ".toml"},
		{"unknown yaml key", "map:\n  nope: 1\n", ".yaml"},
		{"invalid map", "[map]\nlayers = 5", ".toml"},
		{"bad engine", "[render]\nengine = \"fdp\"", ".toml"},
		{"negative ttl", "[cache]\nttl = \"-1h\"", ".toml"},
		{"unknown format", "{}", ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[map]\nlayers = 9\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, 9, cfg.Map.NumberOfLayers)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Load()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestFindConfigPathOrder(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)
	t.Setenv(EnvConfigPath, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	xdgPath := filepath.Join(xdg, AppName, "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(xdgPath), 0o755))
	require.NoError(t, os.WriteFile(xdgPath, nil, 0o644))
	assert.Equal(t, xdgPath, FindConfigPath())

	require.NoError(t, os.WriteFile("runmap.yaml", nil, 0o644))
	assert.Equal(t, "runmap.yaml", filepath.Base(FindConfigPath()))

	require.NoError(t, os.WriteFile("runmap.toml", nil, 0o644))
	assert.Equal(t, "runmap.toml", filepath.Base(FindConfigPath()))
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/x/cache")
	t.Setenv("XDG_DATA_HOME", "/x/data")

	cfg := Default()
	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/x/cache", AppName), dir)

	path, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/x/data", AppName, "runs.db"), path)

	cfg.Store.Path = "../escape.db"
	_, err = cfg.StorePath()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

func TestExampleConfigs(t *testing.T) {
	for _, name := range []string{"runmap.toml", "runmap.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg, path, err := LoadFromPath(filepath.Join("..", "..", "examples", name))
			require.NoError(t, err)
			assert.NotEmpty(t, path)
			assert.GreaterOrEqual(t, cfg.Map.NumberOfLayers, 10)
			assert.NotZero(t, cfg.Cache.TTL)
			assert.NotEmpty(t, cfg.Render.Formats)
		})
	}
}
