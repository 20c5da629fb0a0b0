package mapgen

import (
	"fmt"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultLayers       = 8
	DefaultMinNodes     = 1
	DefaultMaxNodes     = 3
	DefaultLayerSpacing = 300.0
	DefaultNodeSpacing  = 200.0
	DefaultJitter       = 50.0

	DefaultSmoothPasses = 2
	DefaultSmoothAlpha  = 0.6

	// DefaultBranchChance is the percent chance that a node adds one extra
	// forward edge.
	DefaultBranchChance = 50
	// DefaultBranchReach bounds branch targets to this many node spacings
	// of horizontal distance.
	DefaultBranchReach = 1.5

	DefaultMinEliteLayer = 2
	DefaultBattleRatio   = 0.5
)

// DefaultFillWeights splits the non-Battle remainder of the pool.
var DefaultFillWeights = FillWeights{Event: 60, Shop: 20, CardRemove: 20}

// =============================================================================
// Config
// =============================================================================

// FillWeights are the relative odds of each type in the random fill. They
// are percentages when they sum to 100, otherwise they are normalized.
type FillWeights struct {
	Event      int `json:"event" toml:"event" yaml:"event"`
	Shop       int `json:"shop" toml:"shop" yaml:"shop"`
	CardRemove int `json:"card_remove" toml:"card_remove" yaml:"card_remove"`
}

func (w FillWeights) total() int { return w.Event + w.Shop + w.CardRemove }

// Config controls the shape, layout and type balance of a generated map.
// Together with a seed it fully determines the result.
type Config struct {
	// Topology
	NumberOfLayers   int `json:"layers" toml:"layers" yaml:"layers"`
	MinNodesPerLayer int `json:"min_nodes" toml:"min_nodes" yaml:"min_nodes"`
	MaxNodesPerLayer int `json:"max_nodes" toml:"max_nodes" yaml:"max_nodes"`

	// Geometry
	LayerSpacing   float64 `json:"layer_spacing" toml:"layer_spacing" yaml:"layer_spacing"`
	NodeSpacing    float64 `json:"node_spacing" toml:"node_spacing" yaml:"node_spacing"`
	PositionJitter float64 `json:"jitter" toml:"jitter" yaml:"jitter"`

	// Linking
	BranchChance int     `json:"branch_chance" toml:"branch_chance" yaml:"branch_chance"`
	BranchReach  float64 `json:"branch_reach" toml:"branch_reach" yaml:"branch_reach"`

	// Layout smoothing
	Smooth       bool    `json:"smooth" toml:"smooth" yaml:"smooth"`
	SmoothPasses int     `json:"smooth_passes" toml:"smooth_passes" yaml:"smooth_passes"`
	SmoothAlpha  float64 `json:"smooth_alpha" toml:"smooth_alpha" yaml:"smooth_alpha"`

	// Type assignment
	MinEliteLayer int         `json:"min_elite_layer" toml:"min_elite_layer" yaml:"min_elite_layer"`
	BattleRatio   float64     `json:"battle_ratio" toml:"battle_ratio" yaml:"battle_ratio"`
	FillWeights   FillWeights `json:"fill_weights" toml:"fill_weights" yaml:"fill_weights"`
}

// DefaultConfig returns the standard map configuration.
func DefaultConfig() Config {
	return Config{
		NumberOfLayers:   DefaultLayers,
		MinNodesPerLayer: DefaultMinNodes,
		MaxNodesPerLayer: DefaultMaxNodes,
		LayerSpacing:     DefaultLayerSpacing,
		NodeSpacing:      DefaultNodeSpacing,
		PositionJitter:   DefaultJitter,
		BranchChance:     DefaultBranchChance,
		BranchReach:      DefaultBranchReach,
		Smooth:           true,
		SmoothPasses:     DefaultSmoothPasses,
		SmoothAlpha:      DefaultSmoothAlpha,
		MinEliteLayer:    DefaultMinEliteLayer,
		BattleRatio:      DefaultBattleRatio,
		FillWeights:      DefaultFillWeights,
	}
}

// ConfigError describes the first invalid field of a Config.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Reason)
}

// Validate reports the first invalid field as an INVALID_CONFIG error
// wrapping a *ConfigError.
func (c Config) Validate() error {
	if ce := c.check(); ce != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, ce, "invalid map configuration")
	}
	return nil
}

func (c Config) check() *ConfigError {
	switch {
	case c.NumberOfLayers < mapgraph.MinLayers:
		return &ConfigError{"layers", c.NumberOfLayers, fmt.Sprintf("must be at least %d", mapgraph.MinLayers)}
	case c.MinNodesPerLayer < 1:
		return &ConfigError{"min_nodes", c.MinNodesPerLayer, "must be at least 1"}
	case c.MaxNodesPerLayer < c.MinNodesPerLayer:
		return &ConfigError{"max_nodes", c.MaxNodesPerLayer, fmt.Sprintf("must be at least min_nodes (%d)", c.MinNodesPerLayer)}
	case c.LayerSpacing <= 0:
		return &ConfigError{"layer_spacing", c.LayerSpacing, "must be positive"}
	case c.NodeSpacing <= 0:
		return &ConfigError{"node_spacing", c.NodeSpacing, "must be positive"}
	case c.PositionJitter < 0:
		return &ConfigError{"jitter", c.PositionJitter, "must not be negative"}
	case c.BranchChance < 0 || c.BranchChance > 100:
		return &ConfigError{"branch_chance", c.BranchChance, "must be within [0, 100]"}
	case c.BranchReach < 0:
		return &ConfigError{"branch_reach", c.BranchReach, "must not be negative"}
	case c.SmoothPasses < 0:
		return &ConfigError{"smooth_passes", c.SmoothPasses, "must not be negative"}
	case c.SmoothAlpha < 0 || c.SmoothAlpha > 1:
		return &ConfigError{"smooth_alpha", c.SmoothAlpha, "must be within [0, 1]"}
	case c.MinEliteLayer < 1:
		return &ConfigError{"min_elite_layer", c.MinEliteLayer, "must be at least 1"}
	case c.BattleRatio < 0 || c.BattleRatio > 1:
		return &ConfigError{"battle_ratio", c.BattleRatio, "must be within [0, 1]"}
	case c.FillWeights.Event < 0 || c.FillWeights.Shop < 0 || c.FillWeights.CardRemove < 0:
		return &ConfigError{"fill_weights", c.FillWeights, "must not be negative"}
	case c.FillWeights.total() == 0:
		return &ConfigError{"fill_weights", c.FillWeights, "must not all be zero"}
	}
	return nil
}

// finalRest and boss are the pinned single-node layers at the bottom.
func (c Config) finalRest() int { return c.NumberOfLayers - 2 }
func (c Config) boss() int      { return c.NumberOfLayers - 1 }

// pinned reports whether layer i always holds exactly one node.
func (c Config) pinned(i int) bool {
	return i == 0 || i == c.finalRest() || i == c.boss()
}
