package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/seed"
)

// mapFlags are the flags shared by every command that builds a map. Only
// flags the user set override the config file.
type mapFlags struct {
	seed         string
	layers       int
	minNodes     int
	maxNodes     int
	branchChance int
	noSmooth     bool
	noCache      bool
	refresh      bool
	input        string
}

func (f *mapFlags) bind(cmd *cobra.Command, withInput bool) {
	d := mapgen.DefaultConfig()
	cmd.Flags().StringVarP(&f.seed, "seed", "s", "", "map seed (default: random, printed for replay)")
	cmd.Flags().IntVar(&f.layers, "layers", d.NumberOfLayers, "number of layers (at least 8)")
	cmd.Flags().IntVar(&f.minNodes, "min-nodes", d.MinNodesPerLayer, "minimum nodes per free layer")
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", d.MaxNodesPerLayer, "maximum nodes per free layer")
	cmd.Flags().IntVar(&f.branchChance, "branch-chance", d.BranchChance, "percent chance of an extra branch per node")
	cmd.Flags().BoolVar(&f.noSmooth, "no-smooth", false, "skip layout smoothing")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "regenerate even if the map is cached")
	if withInput {
		cmd.Flags().StringVarP(&f.input, "input", "i", "", "use an exported map JSON file instead of generating")
	}
}

// config applies the set flags on top of base.
func (f *mapFlags) config(cmd *cobra.Command, base mapgen.Config) mapgen.Config {
	cfg := base
	flags := cmd.Flags()
	if flags.Changed("layers") {
		cfg.NumberOfLayers = f.layers
	}
	if flags.Changed("min-nodes") {
		cfg.MinNodesPerLayer = f.minNodes
	}
	if flags.Changed("max-nodes") {
		cfg.MaxNodesPerLayer = f.maxNodes
	}
	if flags.Changed("branch-chance") {
		cfg.BranchChance = f.branchChance
	}
	if f.noSmooth {
		cfg.Smooth = false
	}
	return cfg
}

// resolveSeed parses --seed, or draws a random one when it is unset.
func (f *mapFlags) resolveSeed() (seed.Seed, bool, error) {
	if f.seed == "" {
		return seed.Random(), true, nil
	}
	s, err := seed.Parse(f.seed)
	return s, false, err
}

// loadMap reads an exported map from --input.
func (f *mapFlags) loadMap() (*mapgraph.Graph, error) {
	data, err := os.ReadFile(f.input)
	if err != nil {
		return nil, err
	}
	return mapgraph.ReadJSON(bytes.NewReader(data))
}
