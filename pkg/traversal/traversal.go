// Package traversal tracks a player's progress through a finished run map.
//
// The map itself is immutable; a [Tracker] is the side table that records
// where the player stands and which nodes they have visited. Progress can be
// captured as a [State] and restored later against the same map. Restoring
// against a different map fails with STALE_GRAPH.
package traversal

import (
	"slices"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// State is a serializable snapshot of a Tracker. Visited lists node ids in
// the order they were entered, starting with the start node.
type State struct {
	Fingerprint string            `json:"fingerprint"`
	Current     mapgraph.NodeID   `json:"current"`
	Visited     []mapgraph.NodeID `json:"visited"`
}

// Tracker follows one path from the start node to the boss. It is not safe
// for concurrent use.
type Tracker struct {
	g       *mapgraph.Graph
	current mapgraph.NodeID
	path    []mapgraph.NodeID
	visited []bool
}

// New returns a Tracker standing on the start node of g.
func New(g *mapgraph.Graph) *Tracker {
	t := &Tracker{
		g:       g,
		current: g.Start(),
		visited: make([]bool, g.NodeCount()),
	}
	t.path = []mapgraph.NodeID{t.current}
	t.visited[t.current] = true
	return t
}

// Restore rebuilds a Tracker from a saved state. The state must belong to g
// and describe a connected path from the start node.
func Restore(g *mapgraph.Graph, s State) (*Tracker, error) {
	if s.Fingerprint != g.Fingerprint() {
		return nil, errors.New(errors.ErrCodeStaleGraph, "saved progress belongs to map %s, not %s", short(s.Fingerprint), short(g.Fingerprint()))
	}
	t := New(g)
	if len(s.Visited) == 0 {
		return t, nil
	}
	if s.Visited[0] != g.Start() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "saved path starts at node %d, not the start node", s.Visited[0])
	}
	for _, id := range s.Visited[1:] {
		if err := t.Move(id); err != nil {
			return nil, err
		}
	}
	if t.current != s.Current {
		return nil, errors.New(errors.ErrCodeInvalidInput, "saved position %d does not end the saved path", s.Current)
	}
	return t, nil
}

// Graph returns the map being traversed.
func (t *Tracker) Graph() *mapgraph.Graph { return t.g }

// Current returns the node the player stands on.
func (t *Tracker) Current() mapgraph.NodeID { return t.current }

// Reachable returns the nodes the player may move to next, in display
// order. It is empty once the boss is reached.
func (t *Tracker) Reachable() []mapgraph.NodeID {
	n, _ := t.g.Node(t.current)
	if n.Layer+1 >= t.g.LayerCount() {
		return nil
	}
	var out []mapgraph.NodeID
	for _, id := range t.g.Layer(n.Layer + 1) {
		if slices.Contains(n.Children, id) {
			out = append(out, id)
		}
	}
	return out
}

// Move advances to id, which must be a child of the current node.
func (t *Tracker) Move(id mapgraph.NodeID) error {
	if !t.g.HasEdge(t.current, id) {
		return errors.New(errors.ErrCodeNotReachable, "node %d is not reachable from node %d", id, t.current)
	}
	t.current = id
	t.path = append(t.path, id)
	t.visited[id] = true
	return nil
}

// Visited reports whether the player has entered id.
func (t *Tracker) Visited(id mapgraph.NodeID) bool {
	return id >= 0 && int(id) < len(t.visited) && t.visited[id]
}

// Path returns the visited nodes in order.
func (t *Tracker) Path() []mapgraph.NodeID { return slices.Clone(t.path) }

// Finished reports whether the player has reached the boss.
func (t *Tracker) Finished() bool { return t.current == t.g.Boss() }

// State captures the tracker for persistence.
func (t *Tracker) State() State {
	return State{
		Fingerprint: t.g.Fingerprint(),
		Current:     t.current,
		Visited:     t.Path(),
	}
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
