package mapgen

import (
	"cmp"
	"slices"

	"github.com/matzehuels/runmap/pkg/dag"
)

// smooth runs the barycenter passes. Each pass sweeps top-down keyed on
// parents, then bottom-up keyed on children, over the unpinned layers only.
// Edges never change and no randomness is consumed.
func (b *builder) smooth() {
	first, last := 1, b.cfg.finalRest()-1
	for range b.cfg.SmoothPasses {
		for i := first; i <= last; i++ {
			b.smoothLayer(i, b.g.Parents)
		}
		for i := last; i >= first; i-- {
			b.smoothLayer(i, b.g.Children)
		}
	}
}

// smoothLayer orders layer i by the median x of each node's neighbours and
// moves every node a fraction alpha of the way to its evenly spaced slot.
func (b *builder) smoothLayer(i int, neighbours func(dag.NodeID) []dag.NodeID) {
	ids := b.g.NodesInRow(i)
	type keyed struct {
		id     dag.NodeID
		key, x float64
	}
	order := make([]keyed, len(ids))
	for k, id := range ids {
		x := b.x(id)
		order[k] = keyed{id: id, key: b.medianX(neighbours(id), x), x: x}
	}
	slices.SortStableFunc(order, func(p, q keyed) int {
		return cmp.Or(cmp.Compare(p.key, q.key), cmp.Compare(p.x, q.x))
	})

	n := len(order)
	alpha := b.cfg.SmoothAlpha
	for k, o := range order {
		target := (float64(k) - float64(n-1)/2) * b.cfg.NodeSpacing
		// The conversion stops the compiler fusing this into a multiply-add,
		// which would round differently on arm64.
		b.g.SetX(o.id, o.x+float64(alpha*(target-o.x)))
	}
}

// medianX returns the lower median x of ids, or fallback when ids is empty.
func (b *builder) medianX(ids []dag.NodeID, fallback float64) float64 {
	if len(ids) == 0 {
		return fallback
	}
	xs := make([]float64, len(ids))
	for k, id := range ids {
		xs[k] = b.x(id)
	}
	slices.Sort(xs)
	return xs[(len(xs)-1)/2]
}

// orderByX sets every layer's display order to left-to-right by x.
func (b *builder) orderByX() {
	for i := range b.g.RowCount() {
		// A permutation of the row's own nodes is always accepted.
		_ = b.g.SetRowOrder(i, b.byX(b.g.NodesInRow(i)))
	}
}
