package mapgen

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apperr "github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/seed"
)

var update = flag.Bool("update", false, "rewrite golden files")

// PropertySuite generates many maps per configuration and checks the
// structural and gameplay rules on each.
type PropertySuite struct {
	suite.Suite
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(PropertySuite))
}

func (s *PropertySuite) configs() map[string]Config {
	small := DefaultConfig()

	single := DefaultConfig()
	single.MaxNodesPerLayer = 1

	wide := DefaultConfig()
	wide.NumberOfLayers = 12
	wide.MinNodesPerLayer = 2
	wide.MaxNodesPerLayer = 5

	tall := DefaultConfig()
	tall.NumberOfLayers = 20
	tall.MinNodesPerLayer = 3
	tall.MaxNodesPerLayer = 6
	tall.Smooth = false

	flat := DefaultConfig()
	flat.NumberOfLayers = 10
	flat.PositionJitter = 0
	flat.SmoothPasses = 4
	flat.SmoothAlpha = 1

	noBranch := DefaultConfig()
	noBranch.NumberOfLayers = 9
	noBranch.MaxNodesPerLayer = 4
	noBranch.BranchChance = 0

	return map[string]Config{
		"default":   small,
		"single":    single,
		"wide":      wide,
		"tall":      tall,
		"flat":      flat,
		"no branch": noBranch,
	}
}

func (s *PropertySuite) TestInvariantsAcrossSeeds() {
	for name, cfg := range s.configs() {
		s.Run(name, func() {
			for i := range 150 {
				sd := seed.Seed(i*7919 - 300)
				g, err := Generate(cfg, sd)
				s.Require().NoError(err, "seed %d", sd)
				checkStructure(s.T(), g, cfg)
				checkTypes(s.T(), g, cfg)
			}
		})
	}
}

func (s *PropertySuite) TestEliteAttempts() {
	cfg := DefaultConfig()
	cfg.NumberOfLayers = 10
	for i := range 200 {
		g, err := Generate(cfg, seed.Seed(i))
		s.Require().NoError(err)

		placed := g.TypeCounts()[mapgraph.Elite]
		missed := 0
		for _, w := range g.Warnings() {
			if w.Code == mapgraph.WarnNoCandidate && w.Type == mapgraph.Elite {
				missed++
			}
		}
		s.Equal(2, placed+missed, "seed %d: every elite is placed or warned", i)
	}
}

// checkStructure verifies layer sizes, connectivity and convergence.
func checkStructure(t *testing.T, g *mapgraph.Graph, cfg Config) {
	t.Helper()
	L := cfg.NumberOfLayers
	require.Equal(t, L, g.LayerCount())
	require.NoError(t, g.Validate())

	for i := range L {
		n := len(g.Layer(i))
		if i == 0 || i >= L-2 {
			require.Equal(t, 1, n, "pinned layer %d", i)
			continue
		}
		require.GreaterOrEqual(t, n, cfg.MinNodesPerLayer, "layer %d", i)
		require.LessOrEqual(t, n, cfg.MaxNodesPerLayer, "layer %d", i)
	}

	for _, n := range g.Nodes() {
		if n.ID != g.Start() {
			require.NotEmpty(t, n.Parents, "node %d has no parent", n.ID)
		}
		for _, c := range n.Children {
			child, _ := g.Node(c)
			require.Equal(t, n.Layer+1, child.Layer)
		}
	}

	converge := g.Layer(L - 3)
	for _, id := range converge {
		require.Equal(t, []mapgraph.NodeID{g.FinalRest()}, g.Children(id))
	}
	parents := g.Parents(g.FinalRest())
	slices.Sort(parents)
	slices.Sort(converge)
	require.Equal(t, converge, parents)

	require.True(t, reachable(g, g.Start(), g.Boss()))

	for i := range L {
		row := g.Layer(i)
		for k := 1; k < len(row); k++ {
			a, _ := g.Node(row[k-1])
			b, _ := g.Node(row[k])
			require.LessOrEqual(t, a.Position.X, b.Position.X, "layer %d not in x order", i)
		}
	}
}

// checkTypes verifies the pinned types and the post-repair constraints.
func checkTypes(t *testing.T, g *mapgraph.Graph, cfg Config) {
	t.Helper()
	typ := func(id mapgraph.NodeID) mapgraph.NodeType {
		v, _ := g.Type(id)
		return v
	}
	assert.Equal(t, mapgraph.Battle, typ(g.Start()))
	assert.Equal(t, mapgraph.Rest, typ(g.FinalRest()))
	assert.Equal(t, mapgraph.Boss, typ(g.Boss()))
	assert.Equal(t, 1, g.TypeCounts()[mapgraph.Boss])

	noSafe := map[int]bool{}
	for _, w := range g.Warnings() {
		if w.Code == mapgraph.WarnNoSafeBattle {
			noSafe[w.Layer] = true
		}
	}

	for _, n := range g.Nodes() {
		for _, p := range n.Parents {
			if n.Type == mapgraph.Shop {
				assert.NotEqual(t, mapgraph.Shop, typ(p), "shop %d under shop %d", n.ID, p)
			}
			if n.Type == mapgraph.Battle && typ(p) == mapgraph.Battle {
				for _, gp := range g.Parents(p) {
					assert.NotEqual(t, mapgraph.Battle, typ(gp), "battle run %d-%d-%d", gp, p, n.ID)
				}
			}
		}
		if n.Type == mapgraph.Elite {
			assert.GreaterOrEqual(t, n.Layer, cfg.MinEliteLayer)
			assert.LessOrEqual(t, n.Layer, cfg.NumberOfLayers-4)
		}
	}

	for i := 1; i <= cfg.NumberOfLayers-3; i++ {
		row := g.Layer(i)
		if len(row) < 2 || noSafe[i] {
			continue
		}
		var special, battle bool
		for _, id := range row {
			switch typ(id) {
			case mapgraph.Shop, mapgraph.Elite, mapgraph.Rest:
				special = true
			case mapgraph.Battle:
				battle = true
			}
		}
		assert.False(t, special && !battle, "layer %d has special nodes but no battle", i)
	}
}

func reachable(g *mapgraph.Graph, from, to mapgraph.NodeID) bool {
	seen := map[mapgraph.NodeID]bool{from: true}
	queue := []mapgraph.NodeID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, c := range g.Children(id) {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return false
}

func TestDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumberOfLayers = 14
	cfg.MaxNodesPerLayer = 5

	for _, sd := range []seed.Seed{0, 1, 12345, -99, 1 << 40} {
		a, err := Generate(cfg, sd)
		require.NoError(t, err)
		b, err := Generate(cfg, sd)
		require.NoError(t, err)

		require.Equal(t, a.Fingerprint(), b.Fingerprint())
		ja, _ := mapgraph.EncodeJSON(a)
		jb, _ := mapgraph.EncodeJSON(b)
		require.Equal(t, string(ja), string(jb))
		require.Equal(t, sd, a.Seed())
	}
}

func TestSeedsDiffer(t *testing.T) {
	cfg := DefaultConfig()
	seen := map[string]bool{}
	for i := range 20 {
		g, err := Generate(cfg, seed.Seed(i))
		require.NoError(t, err)
		seen[g.Fingerprint()] = true
	}
	assert.Greater(t, len(seen), 15)
}

func TestLayerBoundary(t *testing.T) {
	cfg := DefaultConfig()

	cfg.NumberOfLayers = 7
	g, err := Generate(cfg, 1)
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidConfig))

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "layers", ce.Field)
	assert.Equal(t, 7, ce.Value)

	cfg.NumberOfLayers = 8
	g, err = Generate(cfg, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, g.LayerCount())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"min nodes zero", func(c *Config) { c.MinNodesPerLayer = 0 }, "min_nodes"},
		{"min above max", func(c *Config) { c.MinNodesPerLayer, c.MaxNodesPerLayer = 4, 3 }, "max_nodes"},
		{"layer spacing", func(c *Config) { c.LayerSpacing = 0 }, "layer_spacing"},
		{"node spacing", func(c *Config) { c.NodeSpacing = -1 }, "node_spacing"},
		{"jitter", func(c *Config) { c.PositionJitter = -0.5 }, "jitter"},
		{"branch chance", func(c *Config) { c.BranchChance = 101 }, "branch_chance"},
		{"branch reach", func(c *Config) { c.BranchReach = -1 }, "branch_reach"},
		{"passes", func(c *Config) { c.SmoothPasses = -1 }, "smooth_passes"},
		{"alpha", func(c *Config) { c.SmoothAlpha = 1.5 }, "smooth_alpha"},
		{"elite layer", func(c *Config) { c.MinEliteLayer = 0 }, "min_elite_layer"},
		{"battle ratio", func(c *Config) { c.BattleRatio = -0.1 }, "battle_ratio"},
		{"negative weight", func(c *Config) { c.FillWeights.Shop = -1 }, "fill_weights"},
		{"zero weights", func(c *Config) { c.FillWeights = FillWeights{} }, "fill_weights"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestGolden(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumberOfLayers = 8
	cfg.MinNodesPerLayer = 1
	cfg.MaxNodesPerLayer = 3

	g, err := Generate(cfg, 12345)
	require.NoError(t, err)
	got, err := mapgraph.EncodeJSON(g)
	require.NoError(t, err)

	path := filepath.Join("testdata", "golden_12345.json")
	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, got, 0o644))
		t.Logf("wrote %s", path)
		return
	}
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("%s is missing; run with -update to capture it", path)
	}
	require.NoError(t, err)
	require.Equal(t, string(want), string(got), "run with -update to accept a deliberate change")

	back, err := mapgraph.ReadJSON(bytes.NewReader(want))
	require.NoError(t, err)
	assert.Equal(t, g.Fingerprint(), back.Fingerprint())
}

func TestGeneratorRegenerate(t *testing.T) {
	gen := NewGenerator(DefaultConfig(), nil)
	require.Nil(t, gen.Graph())

	ctx := context.Background()
	first, err := gen.Regenerate(ctx, 1)
	require.NoError(t, err)
	require.Same(t, first, gen.Graph())

	second, err := gen.Regenerate(ctx, 2)
	require.NoError(t, err)
	require.Same(t, second, gen.Graph())
	assert.NotEqual(t, first.Fingerprint(), second.Fingerprint())
	assert.NoError(t, first.Validate(), "old graph stays valid")

	bad := DefaultConfig()
	bad.NumberOfLayers = 3
	gen = NewGenerator(bad, nil)
	_, err = gen.Regenerate(ctx, 1)
	require.Error(t, err)
	assert.Nil(t, gen.Graph())
}

func TestGenerateRandom(t *testing.T) {
	g, err := GenerateRandom(DefaultConfig())
	require.NoError(t, err)

	replay, err := Generate(DefaultConfig(), g.Seed())
	require.NoError(t, err)
	assert.Equal(t, g.Fingerprint(), replay.Fingerprint())
}

func TestViolations(t *testing.T) {
	for s := range seed.Seed(200) {
		g, err := Generate(DefaultConfig(), s)
		require.NoError(t, err)
		assert.Empty(t, Violations(g), "seed %d", s)
	}
}

func TestNoSafeBattleExemption(t *testing.T) {
	exempted := 0
	for s := range seed.Seed(200) {
		g, err := Generate(DefaultConfig(), s)
		require.NoError(t, err)

		var warned []int
		for _, w := range g.Warnings() {
			if w.Code == mapgraph.WarnNoSafeBattle {
				warned = append(warned, w.Layer)
			}
		}
		if len(warned) == 0 {
			continue
		}
		exempted++
		require.Empty(t, Violations(g), "seed %d", s)

		// Without its warnings the same map breaks the battle-per-layer
		// rule on exactly the warned layers.
		layers := make([][]mapgraph.NodeID, g.LayerCount())
		for i := range layers {
			layers[i] = g.Layer(i)
		}
		bare, err := mapgraph.New(s, g.Nodes(), layers, nil)
		require.NoError(t, err)
		var broken []int
		for _, v := range Violations(bare) {
			require.Equal(t, RuleLayerWithoutBattle, v.Rule, "seed %d", s)
			broken = append(broken, v.Layer)
		}
		assert.ElementsMatch(t, slices.Compact(warned), broken, "seed %d", s)
	}
	// Roughly three default maps in five rely on the exemption.
	assert.Greater(t, exempted, 60)
}
