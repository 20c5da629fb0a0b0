package dag_test

import (
	"fmt"

	"github.com/matzehuels/runmap/pkg/dag"
)

func ExampleDAG_AddEdge() {
	g := dag.New(2)
	a, _ := g.AddNode(0, 0, 0)
	b, _ := g.AddNode(1, 0, 300)

	_ = g.AddEdge(a, b)
	_ = g.AddEdge(a, b) // duplicate edges are ignored

	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Children of a:", g.Children(a))
	fmt.Println("Parents of b:", g.Parents(b))
	// Output:
	// Edges: 1
	// Children of a: [1]
	// Parents of b: [0]
}

func ExampleCountLayerCrossings() {
	// Classic crossing example: X pattern
	g := dag.New(2)
	a, _ := g.AddNode(0, -100, 0)
	b, _ := g.AddNode(0, 100, 0)
	x, _ := g.AddNode(1, -100, 300)
	y, _ := g.AddNode(1, 100, 300)

	_ = g.AddEdge(a, y)
	_ = g.AddEdge(b, x)

	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []dag.NodeID{a, b}, []dag.NodeID{x, y}))
	fmt.Println("Swapped:", dag.CountLayerCrossings(g, []dag.NodeID{a, b}, []dag.NodeID{y, x}))
	// Output:
	// Crossings: 1
	// Swapped: 0
}
