// Package dag provides a layered directed acyclic graph stored as a flat node
// arena, used as the working storage while a run map is being generated.
//
// # Overview
//
// A run map is a stack of horizontal rows (layers). Every edge points from a
// node in row i to a node in row i+1, so the structure is acyclic by
// construction and needs no cycle detection. Nodes live in a single slice and
// are addressed by a dense [NodeID]; parent and child lists hold IDs, never
// pointers, so discarding a DAG discards every reference into it.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [DAG.AddNode], and link them with
// [DAG.AddEdge]. Edges have set semantics and must connect consecutive rows:
//
//	g := dag.New(3)
//	a, _ := g.AddNode(0, 0, 0)
//	b, _ := g.AddNode(1, -100, 300)
//	c, _ := g.AddNode(1, 100, 300)
//	_ = g.AddEdge(a, b)
//	_ = g.AddEdge(a, c)
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. Use [DAG.Validate] to verify integrity after bulk
// mutation.
//
// # Row Order
//
// Each row keeps a display order, initially creation order. Layout passes
// reorder rows with [DAG.SetRowOrder]; a node's Slot keeps recording where it
// was created so that identities never shift.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// consecutive rows with a Fenwick tree in O(E log V). They are used to score
// layouts before and after smoothing.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Generation owns its DAG
// exclusively and freezes it into an immutable graph when done.
package dag
