package mapgen

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/runmap/pkg/dag"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/seed"
)

// builder carries the working state of one generation. Stages run in a
// fixed order and consume rng sequentially; reordering them changes every
// map produced from a given seed.
type builder struct {
	cfg    Config
	rng    *seed.Source
	logger *log.Logger

	g        *dag.DAG
	types    []mapgraph.NodeType
	warnings []mapgraph.Warning
}

func newBuilder(cfg Config, s seed.Seed, logger *log.Logger) *builder {
	return &builder{cfg: cfg, rng: seed.New(s), logger: logger}
}

func (b *builder) run() error {
	if err := b.buildLayers(); err != nil {
		return err
	}
	b.logger.Debug("layers built", "layers", b.g.RowCount(), "nodes", b.g.NodeCount())

	b.linkPaths()
	b.logger.Debug("paths linked", "edges", b.g.EdgeCount())

	before := dag.CountCrossings(b.g)
	if b.cfg.Smooth {
		b.smooth()
	}
	b.orderByX()
	if b.cfg.Smooth {
		b.logger.Debug("layout smoothed", "passes", b.cfg.SmoothPasses, "crossings_before", before, "crossings_after", dag.CountCrossings(b.g))
	}

	b.assignTypes()
	b.logger.Debug("types assigned", "warnings", len(b.warnings))
	return nil
}

// warn records a soft shortfall. layer is -1 when it spans a range.
func (b *builder) warn(code mapgraph.WarningCode, t mapgraph.NodeType, layer int, msg string) {
	b.warnings = append(b.warnings, mapgraph.Warning{Code: code, Type: t, Layer: layer, Message: msg})
	b.logger.Warn(msg, "code", code, "type", t, "layer", layer)
}

func (b *builder) layerOf(id dag.NodeID) int {
	n, _ := b.g.Node(id)
	return n.Row
}

func (b *builder) x(id dag.NodeID) float64 {
	n, _ := b.g.Node(id)
	return n.X
}

// freeze copies the arena into an immutable graph. The arena is validated
// first so a broken edge list never reaches a Graph.
func (b *builder) freeze(s seed.Seed) (*mapgraph.Graph, error) {
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	nodes := make([]mapgraph.Node, b.g.NodeCount())
	for i := range nodes {
		id := dag.NodeID(i)
		n, _ := b.g.Node(id)
		nodes[i] = mapgraph.Node{
			ID:       id,
			Type:     b.types[i],
			Layer:    n.Row,
			Slot:     n.Slot,
			Position: mapgraph.Position{X: n.X, Y: n.Y},
			Parents:  b.g.Parents(id),
			Children: b.g.Children(id),
		}
	}
	layers := make([][]mapgraph.NodeID, b.g.RowCount())
	for i := range layers {
		layers[i] = b.g.NodesInRow(i)
	}
	return mapgraph.New(s, nodes, layers, b.warnings)
}
