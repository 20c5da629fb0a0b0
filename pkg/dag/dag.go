package dag

import (
	"errors"
	"slices"
)

var (
	// ErrRowOutOfRange is returned by [DAG.AddNode] when the row index is
	// outside [0, RowCount).
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist in the arena.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the arena.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows is returned when an edge does not connect row i
	// to row i+1. All edges must point one row down.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrAsymmetricEdge is returned by [DAG.Validate] when a child list and
	// the matching parent list disagree. This indicates arena corruption.
	ErrAsymmetricEdge = errors.New("parent and child lists disagree")

	// ErrInvalidRowOrder is returned by [DAG.SetRowOrder] when the new order
	// is not a permutation of the row's current nodes.
	ErrInvalidRowOrder = errors.New("row order must be a permutation of the row")
)

// NodeID is a dense index into the node arena. IDs are handed out in
// creation order starting at zero and are never reused within one DAG.
type NodeID int

// None marks the absence of a node.
const None NodeID = -1

// Node is a vertex of the layered arena.
//
// Row and Slot are fixed at creation: Slot is the index the node was created
// at within its row and stays stable even when the row is reordered for
// display. X and Y are layout coordinates and may be adjusted after creation.
type Node struct {
	ID   NodeID
	Row  int
	Slot int
	X    float64
	Y    float64
}

// DAG is a directed acyclic graph stored as a flat node arena with edges
// restricted to consecutive rows (From.Row+1 == To.Row). Because every edge
// points one row down the graph is acyclic by construction.
//
// Parent and child lists have set semantics: [DAG.AddEdge] ignores an edge
// that already exists.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    []Node
	outgoing [][]NodeID // nodeID -> children
	incoming [][]NodeID // nodeID -> parents
	rows     [][]NodeID // row -> node IDs in display order
	edges    int
}

// New creates an empty DAG with the given number of rows.
func New(rows int) *DAG {
	return &DAG{rows: make([][]NodeID, max(rows, 0))}
}

// AddNode appends a node to the given row and returns its ID.
// Returns ErrRowOutOfRange if the row does not exist.
func (d *DAG) AddNode(row int, x, y float64) (NodeID, error) {
	if row < 0 || row >= len(d.rows) {
		return None, ErrRowOutOfRange
	}
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{ID: id, Row: row, Slot: len(d.rows[row]), X: x, Y: y})
	d.outgoing = append(d.outgoing, nil)
	d.incoming = append(d.incoming, nil)
	d.rows[row] = append(d.rows[row], id)
	return id, nil
}

func (d *DAG) valid(id NodeID) bool { return id >= 0 && int(id) < len(d.nodes) }

// AddEdge links from → to in both directions. Returns ErrUnknownSourceNode or
// ErrUnknownTargetNode for IDs outside the arena, and ErrNonConsecutiveRows if
// to is not exactly one row below from. Adding an existing edge is a no-op.
func (d *DAG) AddEdge(from, to NodeID) error {
	if !d.valid(from) {
		return ErrUnknownSourceNode
	}
	if !d.valid(to) {
		return ErrUnknownTargetNode
	}
	if d.nodes[to].Row != d.nodes[from].Row+1 {
		return ErrNonConsecutiveRows
	}
	if slices.Contains(d.outgoing[from], to) {
		return nil
	}
	d.outgoing[from] = append(d.outgoing[from], to)
	d.incoming[to] = append(d.incoming[to], from)
	d.edges++
	return nil
}

// HasEdge reports whether from → to exists.
func (d *DAG) HasEdge(from, to NodeID) bool {
	return d.valid(from) && slices.Contains(d.outgoing[from], to)
}

// ClearChildren removes every outgoing edge of id, keeping the children's
// parent lists consistent.
func (d *DAG) ClearChildren(id NodeID) {
	if !d.valid(id) {
		return
	}
	for _, c := range d.outgoing[id] {
		d.incoming[c] = slices.DeleteFunc(d.incoming[c], func(p NodeID) bool { return p == id })
		d.edges--
	}
	d.outgoing[id] = nil
}

// Children returns the IDs this node has edges to, in insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.outgoing[id]
}

// Parents returns the IDs that have edges to this node, in insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.incoming[id]
}

// Node returns the node with the given ID and true, or a zero Node and false
// if the ID is outside the arena.
func (d *DAG) Node(id NodeID) (Node, bool) {
	if !d.valid(id) {
		return Node{}, false
	}
	return d.nodes[id], true
}

// SetX moves a node horizontally. Unknown IDs are ignored.
func (d *DAG) SetX(id NodeID, x float64) {
	if d.valid(id) {
		d.nodes[id].X = x
	}
}

// NodesInRow returns the node IDs of a row in display order.
// Returns nil for rows outside the arena. The returned slice should not be
// modified - use SetRowOrder to reorder.
func (d *DAG) NodesInRow(row int) []NodeID {
	if row < 0 || row >= len(d.rows) {
		return nil
	}
	return d.rows[row]
}

// SetRowOrder replaces the display order of a row. The order must contain
// exactly the row's current nodes.
func (d *DAG) SetRowOrder(row int, order []NodeID) error {
	if row < 0 || row >= len(d.rows) {
		return ErrRowOutOfRange
	}
	cur := d.rows[row]
	if len(order) != len(cur) {
		return ErrInvalidRowOrder
	}
	want := slices.Sorted(slices.Values(cur))
	got := slices.Sorted(slices.Values(order))
	if !slices.Equal(want, got) {
		return ErrInvalidRowOrder
	}
	d.rows[row] = slices.Clone(order)
	return nil
}

// RowCount returns the number of rows the DAG was created with.
func (d *DAG) RowCount() int { return len(d.rows) }

// NodeCount returns the number of nodes in the arena.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return d.edges }

// Validate checks arena integrity and returns nil if valid:
//
//  1. Every edge connects consecutive rows (From.Row+1 == To.Row)
//  2. Child and parent lists mirror each other
//
// Acyclicity follows from (1) and is not checked separately.
func (d *DAG) Validate() error {
	for from, children := range d.outgoing {
		for _, to := range children {
			if !d.valid(to) {
				return ErrUnknownTargetNode
			}
			if d.nodes[to].Row != d.nodes[from].Row+1 {
				return ErrNonConsecutiveRows
			}
			if !slices.Contains(d.incoming[to], NodeID(from)) {
				return ErrAsymmetricEdge
			}
		}
	}
	for to, parents := range d.incoming {
		for _, from := range parents {
			if !d.valid(from) {
				return ErrUnknownSourceNode
			}
			if !slices.Contains(d.outgoing[from], NodeID(to)) {
				return ErrAsymmetricEdge
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
// This is commonly used to convert row orderings into fast position lookups
// for crossing calculations.
func PosMap(ids []NodeID) map[NodeID]int {
	m := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
