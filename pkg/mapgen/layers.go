package mapgen

import (
	"github.com/matzehuels/runmap/pkg/dag"
)

// buildLayers creates every node. Pinned layers hold one node and draw no
// count; other layers draw a count in [min, max]. Each node then draws its x
// jitter followed by its y jitter.
func (b *builder) buildLayers() error {
	c := b.cfg
	b.g = dag.New(c.NumberOfLayers)
	for i := range c.NumberOfLayers {
		n := 1
		if !c.pinned(i) {
			n = b.rng.IntRange(c.MinNodesPerLayer, c.MaxNodesPerLayer)
		}
		for j := range n {
			x := (float64(j)-float64(n-1)/2)*c.NodeSpacing + b.rng.Jitter(c.PositionJitter)
			y := float64(i)*c.LayerSpacing + b.rng.Jitter(c.PositionJitter)
			if _, err := b.g.AddNode(i, x, y); err != nil {
				return err
			}
		}
	}
	return nil
}
