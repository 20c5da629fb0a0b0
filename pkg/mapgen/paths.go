package mapgen

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/runmap/pkg/dag"
)

// linkPaths connects the layers in four passes:
//
//  1. backward: every node above the boss links to its nearest node below,
//     so every node has a forward path to the boss
//  2. forward: left to right, each node may add one extra edge to a nearby
//     node below; a node that branched blocks its right-hand neighbour
//  3. orphans: any node still without a parent links from its nearest node
//     above
//  4. convergence: the layer above the final rest links only to it
func (b *builder) linkPaths() {
	L := b.cfg.NumberOfLayers

	for i := L - 2; i >= 0; i-- {
		below := b.g.NodesInRow(i + 1)
		for _, id := range b.g.NodesInRow(i) {
			b.link(id, b.nearest(id, below))
		}
	}

	for i := 0; i <= L-2; i++ {
		b.branch(i)
	}

	for i := 1; i < L; i++ {
		above := b.g.NodesInRow(i - 1)
		for _, id := range b.g.NodesInRow(i) {
			if len(b.g.Parents(id)) == 0 {
				b.link(b.nearest(id, above), id)
			}
		}
	}

	finalRest := b.g.NodesInRow(b.cfg.finalRest())[0]
	for _, id := range b.g.NodesInRow(b.cfg.finalRest() - 1) {
		b.g.ClearChildren(id)
		b.link(id, finalRest)
	}
}

// branch runs the forward branching pass for layer i. The percent roll is
// drawn for every node that is not gated, with or without candidates.
func (b *builder) branch(i int) {
	reach := b.cfg.BranchReach * b.cfg.NodeSpacing
	below := b.g.NodesInRow(i + 1)

	gated := false
	for _, id := range b.byX(b.g.NodesInRow(i)) {
		if gated {
			gated = false
			continue
		}
		roll := b.rng.Percent()

		x := b.x(id)
		var candidates []dag.NodeID
		for _, c := range below {
			if !b.g.HasEdge(id, c) && math.Abs(b.x(c)-x) < reach {
				candidates = append(candidates, c)
			}
		}
		if roll < b.cfg.BranchChance && len(candidates) > 0 {
			b.link(id, candidates[b.rng.Intn(len(candidates))])
			gated = true
		}
	}
}

// nearest returns the node of row closest to id by squared Euclidean
// distance. The first node wins ties.
func (b *builder) nearest(id dag.NodeID, row []dag.NodeID) dag.NodeID {
	from, _ := b.g.Node(id)
	best, bestDist := dag.None, math.Inf(1)
	for _, c := range row {
		n, _ := b.g.Node(c)
		dx, dy := n.X-from.X, n.Y-from.Y
		if d := float64(dx*dx) + float64(dy*dy); d < bestDist { // no fused multiply-add
			best, bestDist = c, d
		}
	}
	return best
}

func (b *builder) link(from, to dag.NodeID) {
	// Rows are consecutive by construction, so AddEdge cannot fail here.
	_ = b.g.AddEdge(from, to)
}

// byX returns ids sorted by x, keeping the given order on equal x.
func (b *builder) byX(ids []dag.NodeID) []dag.NodeID {
	sorted := slices.Clone(ids)
	slices.SortStableFunc(sorted, func(p, q dag.NodeID) int {
		return cmp.Compare(b.x(p), b.x(q))
	})
	return sorted
}
