// Package mapgraph holds the finished, read-only run map.
//
// A [Graph] is produced once by generation and never changes afterwards.
// Nodes are addressed by dense [NodeID]s; parent and child lists are id
// lists, and every edge joins layer i to layer i+1. Consumers that track
// progress (visited nodes, cleared encounters) keep that state in their own
// tables keyed by NodeID.
//
// # Accessors
//
// [Graph.Layer] lists a layer in display order, [Graph.Node] returns a copy
// of one node, and [Graph.Start], [Graph.FinalRest] and [Graph.Boss] name
// the pinned nodes. Returned slices are copies.
//
// # Serialization
//
// [WriteJSON] and [ReadJSON] round-trip a graph. Reading validates every
// structural rule (see [Graph.Validate]) and checks the stored
// [Graph.Fingerprint], so a corrupted or hand-edited file is rejected with
// an INVALID_FORMAT error rather than producing a broken map.
package mapgraph
