// Package pkg provides the core libraries for runmap, a generator of layered
// encounter maps for roguelike runs.
//
// # Overview
//
// A run map is a layered directed graph. The player starts on a single node
// in layer 0 and moves down one layer at a time until the boss. Every node is
// an encounter (Battle, Elite, Event, Shop, Rest, CardRemove or Boss) and the
// whole map, types and positions included, is a pure function of a seed and
// a configuration.
//
// # Architecture
//
// The typical data flow:
//
//	seed + config
//	     ↓
//	[mapgen] (layers, paths, branches, types, smoothing)
//	     ↓
//	[mapgraph] (frozen, fingerprinted map; JSON export)
//	     ↓
//	[render] (DOT, SVG, PNG, PDF, text)   [traversal] (player progress)
//	                                           ↓
//	                                      [runstore] (saved runs in SQLite)
//
// # Quick Start
//
//	g, err := mapgen.Generate(mapgen.DefaultConfig(), 12345)
//	if err != nil {
//	    return err
//	}
//	svg, err := render.RenderSVG(render.ToDOT(g, render.Options{}), render.EngineNeato)
//
// # Main Packages
//
// [dag] - Arena-backed layered DAG with row-consecutive edges and a Fenwick
// crossing counter. [mapgen] builds on it while a map is under construction.
//
// [mapgen] - The generator: layer sizing, path carving, branching, type
// assignment with placement rules, and layout smoothing.
//
// [mapgraph] - The finished, immutable map and its JSON form.
//
// [seed] - Deterministic random streams derived from numeric seeds or run ids.
//
// [traversal] - Tracks a player's position and visited nodes.
//
// [render] - Graphviz-based drawing plus a plain text dump.
//
// [pipeline] - Cached generate and render used by the CLI, and batch surveys.
//
// [cache] - File, Redis and null cache backends with versioned keys.
//
// [runstore] - SQLite persistence for runs and their progress.
//
// [config] - TOML and YAML settings files.
//
// [observability] - Hooks for generation, cache and render events.
//
// [errors] - Structured error codes shared by every package.
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/dag
// [mapgen]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/mapgen
// [mapgraph]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/mapgraph
// [seed]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/seed
// [traversal]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/traversal
// [render]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/cache
// [runstore]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/runstore
// [config]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/runmap/pkg/errors
package pkg
