// Package mapgen generates run maps: layered encounter graphs that lead from
// a single start node to a single boss.
//
// # Pipeline
//
// [Generate] runs four stages over one seeded random stream, always in this
// order:
//
//  1. Layers: every layer gets a random node count and jittered positions.
//     The first layer, the final rest layer and the boss layer hold exactly
//     one node.
//  2. Paths: nearest-neighbour links guarantee a route to the boss, random
//     branches add choice, orphaned nodes are re-attached and the layer above
//     the final rest converges onto it.
//  3. Smoothing (optional): barycenter sweeps move nodes toward the median of
//     their neighbours to reduce crossings. Edges do not change.
//  4. Types: guaranteed singles, the elite to rest to shop chain, a weighted
//     random fill and a repair sweep that removes consecutive shops and runs
//     of three battles.
//
// The result is an immutable [mapgraph.Graph]. The same [Config] and seed
// always produce a bit-identical graph, so persisting the pair is enough to
// replay a map.
//
// # Errors
//
// An invalid [Config] is rejected before anything is built with an
// INVALID_CONFIG error wrapping a [*ConfigError]. Placements that find no
// eligible node are not errors: they are recorded as [mapgraph.Warning]s on
// the graph and logged.
package mapgen
