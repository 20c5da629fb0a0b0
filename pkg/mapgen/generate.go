package mapgen

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/observability"
	"github.com/matzehuels/runmap/pkg/seed"
)

// Version identifies the generation algorithm. It changes whenever an
// existing seed and config would produce a different map, so caches and
// stored runs can be scoped by it.
const Version = 2

// Generate builds the map for cfg and s. The same inputs always produce a
// bit-identical graph. An invalid cfg returns an INVALID_CONFIG error and no
// graph.
func Generate(cfg Config, s seed.Seed) (*mapgraph.Graph, error) {
	return NewGenerator(cfg, nil).Generate(context.Background(), s)
}

// GenerateRandom builds a map from a fresh secure seed. The seed is recorded
// on the graph so the map can be replayed.
func GenerateRandom(cfg Config) (*mapgraph.Graph, error) {
	return Generate(cfg, seed.Random())
}

// Generator owns the current map of a run and replaces it on regeneration.
// It is safe for concurrent use.
type Generator struct {
	cfg    Config
	logger *log.Logger

	mu    sync.RWMutex
	graph *mapgraph.Graph
}

// NewGenerator returns a Generator for cfg. A nil logger uses log.Default().
func NewGenerator(cfg Config, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config { return g.cfg }

// Generate builds a map without touching the owned graph.
func (g *Generator) Generate(ctx context.Context, s seed.Seed) (*mapgraph.Graph, error) {
	hooks := observability.Generate()
	hooks.OnGenerateStart(ctx, int64(s), g.cfg.NumberOfLayers)
	start := time.Now()

	graph, err := g.build(ctx, s)

	nodes := 0
	if graph != nil {
		nodes = graph.NodeCount()
	}
	hooks.OnGenerateComplete(ctx, int64(s), nodes, time.Since(start), err)
	return graph, err
}

func (g *Generator) build(ctx context.Context, s seed.Seed) (*mapgraph.Graph, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	b := newBuilder(g.cfg, s, g.logger.With("seed", s))
	if err := b.run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate map")
	}
	for _, w := range b.warnings {
		observability.Generate().OnShortfall(ctx, string(w.Code), w.Type.String(), w.Layer)
	}

	graph, err := b.freeze(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generated map failed validation")
	}
	return graph, nil
}

// Regenerate builds a map for s and makes it the owned graph. Holders of the
// previous graph keep a valid but superseded value; its node ids mean
// nothing in the new one.
func (g *Generator) Regenerate(ctx context.Context, s seed.Seed) (*mapgraph.Graph, error) {
	graph, err := g.Generate(ctx, s)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.graph = graph
	g.mu.Unlock()
	g.logger.Info("map regenerated", "seed", s, "nodes", graph.NodeCount(), "fingerprint", graph.Fingerprint()[:12])
	return graph, nil
}

// Graph returns the owned graph, or nil before the first Regenerate.
func (g *Generator) Graph() *mapgraph.Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph
}
