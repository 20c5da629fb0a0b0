package dag

// CountCrossings returns the total number of edge crossings of the DAG using
// the current display order of every row. It sums the crossings between each
// pair of consecutive rows and runs in O(R × E log V) time where R is the
// number of rows, E is edges per layer, and V is nodes per layer.
func CountCrossings(g *DAG) int {
	crossings := 0
	for r := 0; r < g.RowCount()-1; r++ {
		crossings += CountLayerCrossings(g, g.NodesInRow(r), g.NodesInRow(r+1))
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent rows using a
// Fenwick tree (binary indexed tree) for O(E log V) performance where E is the
// number of edges between the rows and V is the number of nodes in the lower row.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target positions
// when edges are sorted by source position.
//
// Returns 0 if either row is empty or nil, as no crossings can exist without edges.
func CountLayerCrossings(g *DAG, upper, lower []NodeID) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	// Edges are visited by source position, then by target position, so the
	// target sequence is built in sorted source order directly.
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	targets := make([]int, 0, 4)
	for _, nodeID := range upper {
		targets = targets[:0]
		for _, child := range g.Children(nodeID) {
			if pos, ok := lowerPos[child]; ok {
				targets = append(targets, pos)
			}
		}
		sortInts(targets)

		// Query: edges seen so far with target > t cross this edge.
		for _, t := range targets {
			lessOrEqual := 0
			for q := t + 1; q > 0; q -= q & (-q) {
				lessOrEqual += fenwick[q]
			}
			crossings += total - lessOrEqual
		}
		// Update after the query so edges sharing a source never count.
		for _, t := range targets {
			total++
			for idx := t + 1; idx < len(fenwick); idx += idx & (-idx) {
				fenwick[idx]++
			}
		}
	}
	return crossings
}

// sortInts is an insertion sort; child lists hold a handful of entries.
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
