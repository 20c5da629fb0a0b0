package pipeline

import (
	"context"
	"maps"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/seed"
)

// Summary aggregates statistics over many generated maps.
type Summary struct {
	Maps          int
	Nodes         int
	Edges         int
	Types         map[mapgraph.NodeType]int
	Warnings      map[mapgraph.WarningCode]int
	MeanCrossings float64
	// Violations counts broken gameplay rules. It is zero for every map the
	// generator produces.
	Violations map[mapgen.Rule]int
	Duration   time.Duration
}

// TypeShare returns the fraction of all nodes that have type t.
func (s *Summary) TypeShare(t mapgraph.NodeType) float64 {
	if s.Nodes == 0 {
		return 0
	}
	return float64(s.Types[t]) / float64(s.Nodes)
}

// TotalViolations sums Violations.
func (s *Summary) TotalViolations() int {
	n := 0
	for _, c := range s.Violations {
		n += c
	}
	return n
}

// SortedTypes returns the node types present, in declaration order.
func (s *Summary) SortedTypes() []mapgraph.NodeType {
	return slices.Sorted(maps.Keys(s.Types))
}

type surveyItem struct {
	nodes, edges, crossings int
	types                   map[mapgraph.NodeType]int
	warnings                []mapgraph.Warning
	violations              []mapgen.Violation
}

// Survey generates one map per seed with at most concurrency generations in
// flight and aggregates the results. The cache is not used. A non-positive
// concurrency uses GOMAXPROCS. The first generation error cancels the rest.
func (r *Runner) Survey(ctx context.Context, cfg mapgen.Config, seeds []seed.Seed, concurrency int) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	start := time.Now()

	items := make([]surveyItem, len(seeds))
	gen := mapgen.NewGenerator(cfg, r.Logger)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := gen.Generate(ctx, s)
			if err != nil {
				return err
			}
			items[i] = surveyItem{
				nodes:      m.NodeCount(),
				edges:      m.EdgeCount(),
				crossings:  m.Crossings(),
				types:      m.TypeCounts(),
				warnings:   m.Warnings(),
				violations: mapgen.Violations(m),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := &Summary{
		Maps:       len(seeds),
		Types:      make(map[mapgraph.NodeType]int),
		Warnings:   make(map[mapgraph.WarningCode]int),
		Violations: make(map[mapgen.Rule]int),
	}
	crossings := 0
	for _, it := range items {
		sum.Nodes += it.nodes
		sum.Edges += it.edges
		crossings += it.crossings
		for t, c := range it.types {
			sum.Types[t] += c
		}
		for _, w := range it.warnings {
			sum.Warnings[w.Code]++
		}
		for _, v := range it.violations {
			sum.Violations[v.Rule]++
		}
	}
	if len(seeds) > 0 {
		sum.MeanCrossings = float64(crossings) / float64(len(seeds))
	}
	sum.Duration = time.Since(start)

	r.Logger.Info("survey complete",
		"maps", sum.Maps,
		"nodes", sum.Nodes,
		"violations", sum.TotalViolations(),
		"duration", sum.Duration)
	return sum, nil
}
