package mapgraph

import (
	"slices"

	"github.com/matzehuels/runmap/pkg/errors"
)

// Validate checks the structural rules every run map satisfies:
//   - at least [MinLayers] layers, with one node in the first and last two
//   - node i has ID i and appears in exactly one layer list, its own
//   - every edge joins consecutive layers and is recorded on both ends
//   - every node except the start has a parent
//   - the boss is reachable from the start
//   - the layer before the final rest links only to the final rest
//
// Violations are reported as INVALID_FORMAT errors.
func (g *Graph) Validate() error {
	return validate(g.nodes, g.layers)
}

func validate(nodes []Node, layers [][]NodeID) error {
	L := len(layers)
	if L < MinLayers {
		return errors.New(errors.ErrCodeInvalidFormat, "graph has %d layers, need at least %d", L, MinLayers)
	}
	for _, i := range []int{0, L - 2, L - 1} {
		if len(layers[i]) != 1 {
			return errors.New(errors.ErrCodeInvalidFormat, "layer %d holds %d nodes, want 1", i, len(layers[i]))
		}
	}

	placed := make([]bool, len(nodes))
	for li, l := range layers {
		for _, id := range l {
			if id < 0 || int(id) >= len(nodes) {
				return errors.New(errors.ErrCodeInvalidFormat, "layer %d references unknown node %d", li, id)
			}
			if placed[id] {
				return errors.New(errors.ErrCodeInvalidFormat, "node %d listed twice", id)
			}
			if nodes[id].Layer != li {
				return errors.New(errors.ErrCodeInvalidFormat, "node %d has layer %d but is listed in layer %d", id, nodes[id].Layer, li)
			}
			placed[id] = true
		}
	}

	for i, n := range nodes {
		if n.ID != NodeID(i) {
			return errors.New(errors.ErrCodeInvalidFormat, "node at index %d has id %d", i, n.ID)
		}
		if !placed[i] {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d is not in any layer", i)
		}
		if int(n.Type) >= len(typeNames) {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has invalid type %d", i, n.Type)
		}
		if err := checkLinks(nodes, n); err != nil {
			return err
		}
	}

	start, finalRest, boss := layers[0][0], layers[L-2][0], layers[L-1][0]
	for i, n := range nodes {
		if NodeID(i) != start && len(n.Parents) == 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has no parent", i)
		}
	}
	if !reaches(nodes, start, boss) {
		return errors.New(errors.ErrCodeInvalidFormat, "boss %d is not reachable from start %d", boss, start)
	}
	for _, id := range layers[L-3] {
		if c := nodes[id].Children; len(c) != 1 || c[0] != finalRest {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d must link only to the final rest, has children %v", id, c)
		}
	}
	return nil
}

func checkLinks(nodes []Node, n Node) error {
	for _, c := range n.Children {
		if c < 0 || int(c) >= len(nodes) {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d links to unknown node %d", n.ID, c)
		}
		if nodes[c].Layer != n.Layer+1 {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d->%d skips layers", n.ID, c)
		}
		if !slices.Contains(nodes[c].Parents, n.ID) {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d->%d missing from parent list", n.ID, c)
		}
	}
	for _, p := range n.Parents {
		if p < 0 || int(p) >= len(nodes) {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d has unknown parent %d", n.ID, p)
		}
		if !slices.Contains(nodes[p].Children, n.ID) {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d->%d missing from child list", p, n.ID)
		}
	}
	if hasDup(n.Children) || hasDup(n.Parents) {
		return errors.New(errors.ErrCodeInvalidFormat, "node %d has duplicate links", n.ID)
	}
	return nil
}

func hasDup(ids []NodeID) bool {
	for i := range ids {
		if slices.Contains(ids[i+1:], ids[i]) {
			return true
		}
	}
	return false
}

func reaches(nodes []Node, from, to NodeID) bool {
	seen := make([]bool, len(nodes))
	seen[from] = true
	queue := []NodeID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		for _, c := range nodes[id].Children {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return false
}
