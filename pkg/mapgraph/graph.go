package mapgraph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"

	"github.com/matzehuels/runmap/pkg/dag"
	"github.com/matzehuels/runmap/pkg/seed"
)

// MinLayers is the smallest layer count a run map may have.
const MinLayers = 8

// Graph is a finished run map. It is immutable: every accessor returns
// copies, and consumers keep per-node state in side tables keyed by NodeID.
type Graph struct {
	seed        seed.Seed
	nodes       []Node
	layers      [][]NodeID
	warnings    []Warning
	edges       int
	fingerprint string
}

// New freezes a graph from its nodes and per-layer display order. Node i
// must have ID i. The structure is validated before the graph is returned;
// see [Validate].
func New(s seed.Seed, nodes []Node, layers [][]NodeID, warnings []Warning) (*Graph, error) {
	g := &Graph{
		seed:     s,
		nodes:    make([]Node, len(nodes)),
		layers:   make([][]NodeID, len(layers)),
		warnings: slices.Clone(warnings),
	}
	for i, n := range nodes {
		g.nodes[i] = n.clone()
		g.edges += len(n.Children)
	}
	for i, l := range layers {
		g.layers[i] = slices.Clone(l)
	}
	if err := validate(g.nodes, g.layers); err != nil {
		return nil, err
	}
	g.fingerprint = fingerprint(s, g.nodes, g.layers, g.warnings)
	return g, nil
}

// Seed returns the seed the graph was generated from.
func (g *Graph) Seed() seed.Seed { return g.seed }

// Fingerprint returns a hex SHA-256 digest of everything the graph holds:
// seed, topology, types, positions, layer order and warnings. Two graphs with
// equal fingerprints are bit-identical.
func (g *Graph) Fingerprint() string { return g.fingerprint }

// LayerCount returns the number of layers.
func (g *Graph) LayerCount() int { return len(g.layers) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of parent to child links.
func (g *Graph) EdgeCount() int { return g.edges }

// Layer returns the node ids of layer i in display (left to right) order.
// It returns nil for an out-of-range index.
func (g *Graph) Layer(i int) []NodeID {
	if i < 0 || i >= len(g.layers) {
		return nil
	}
	return slices.Clone(g.layers[i])
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[id].clone(), true
}

// Nodes returns copies of every node in id order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// Type returns the type of a node, or false for an unknown id.
func (g *Graph) Type(id NodeID) (NodeType, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return 0, false
	}
	return g.nodes[id].Type, true
}

// Children returns the child ids of a node.
func (g *Graph) Children(id NodeID) []NodeID {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return slices.Clone(g.nodes[id].Children)
}

// Parents returns the parent ids of a node.
func (g *Graph) Parents(id NodeID) []NodeID {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return slices.Clone(g.nodes[id].Parents)
}

// HasEdge reports whether from links directly to to.
func (g *Graph) HasEdge(from, to NodeID) bool {
	if from < 0 || int(from) >= len(g.nodes) {
		return false
	}
	return slices.Contains(g.nodes[from].Children, to)
}

// Start returns the single node of layer 0.
func (g *Graph) Start() NodeID { return g.layers[0][0] }

// FinalRest returns the single node of the second-to-last layer.
func (g *Graph) FinalRest() NodeID { return g.layers[len(g.layers)-2][0] }

// Boss returns the single node of the last layer.
func (g *Graph) Boss() NodeID { return g.layers[len(g.layers)-1][0] }

// Warnings returns the placement shortfalls recorded during generation.
func (g *Graph) Warnings() []Warning { return slices.Clone(g.warnings) }

// TypeCounts returns how many nodes carry each type.
func (g *Graph) TypeCounts() map[NodeType]int {
	counts := make(map[NodeType]int, len(typeNames))
	for _, n := range g.nodes {
		counts[n.Type]++
	}
	return counts
}

// Crossings counts edge crossings between consecutive layers in display
// order.
func (g *Graph) Crossings() int {
	return dag.CountCrossings(g.toDAG())
}

func (g *Graph) toDAG() *dag.DAG {
	d := dag.New(len(g.layers))
	for _, n := range g.nodes {
		// Nodes are stored in id order, which is creation order.
		_, _ = d.AddNode(n.Layer, n.Position.X, n.Position.Y)
	}
	for _, n := range g.nodes {
		for _, c := range n.Children {
			_ = d.AddEdge(n.ID, c)
		}
	}
	for i, l := range g.layers {
		_ = d.SetRowOrder(i, l)
	}
	return d
}

func fingerprint(s seed.Seed, nodes []Node, layers [][]NodeID, warnings []Warning) string {
	h := sha256.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	// Strings are length-prefixed so adjacent fields cannot run together.
	putString := func(v string) {
		put(uint64(len(v)))
		h.Write([]byte(v))
	}
	put(uint64(s))
	put(uint64(len(layers)))
	for _, l := range layers {
		put(uint64(len(l)))
		for _, id := range l {
			put(uint64(id))
		}
	}
	for _, n := range nodes {
		put(uint64(n.ID))
		put(uint64(n.Type))
		put(uint64(n.Layer))
		put(uint64(n.Slot))
		put(math.Float64bits(n.Position.X))
		put(math.Float64bits(n.Position.Y))
		put(uint64(len(n.Parents)))
		for _, p := range n.Parents {
			put(uint64(p))
		}
		put(uint64(len(n.Children)))
		for _, c := range n.Children {
			put(uint64(c))
		}
	}
	put(uint64(len(warnings)))
	for _, w := range warnings {
		putString(string(w.Code))
		put(uint64(w.Type))
		put(uint64(w.Layer))
		putString(w.Message)
	}
	return hex.EncodeToString(h.Sum(nil))
}
