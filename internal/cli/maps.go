package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/pipeline"
)

// buildMap loads the map named by --input, or generates one from the seed
// and config flags. The runner is returned for rendering and must be closed.
func (c *CLI) buildMap(ctx context.Context, cmd *cobra.Command, f *mapFlags) (*mapgraph.Graph, *pipeline.Runner, error) {
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, nil, err
	}

	if f.input != "" {
		g, err := f.loadMap()
		if err != nil {
			runner.Close()
			return nil, nil, err
		}
		c.Logger.Infof("Loaded %s (seed %d)", f.input, g.Seed())
		return g, runner, nil
	}

	s, random, err := f.resolveSeed()
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	if random {
		c.Logger.Infof("Using random seed %d", s)
	}

	prog := newProgress(c.Logger)
	g, hit, err := runner.Generate(ctx, pipeline.Options{
		Seed:    s,
		Config:  f.config(cmd, c.cfg.Map),
		Refresh: f.refresh,
	})
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	prog.done("Built map")
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	for _, w := range g.Warnings() {
		printWarning("%s: %s", w.Code, w.Message)
	}
	return g, runner, nil
}
