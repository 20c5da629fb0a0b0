// Package render draws finished run maps.
//
// # Overview
//
// Rendering only reads a [mapgraph.Graph]; it never changes it. The package
// produces:
//
//   - Graphviz DOT source ([ToDOT]), coloured by node type
//   - SVG via go-graphviz ([RenderSVG])
//   - PDF and PNG via the external rsvg-convert tool ([ToPDF], [ToPNG])
//   - A plain text layer listing ([ToASCII]) for terminals and tests
//
// # Engines
//
// Two Graphviz engines are supported. EngineNeato pins every node at its
// generated position, so the drawing matches the layout the game would use.
// EngineDot ignores positions and lets Graphviz rank the nodes by layer,
// which is easier to read for dense maps.
//
//	dot := render.ToDOT(g, render.Options{Engine: render.EngineNeato})
//	svg, err := render.RenderSVG(dot, render.EngineNeato)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using rsvg-convert (from librsvg):
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
//
// [mapgraph.Graph]: github.com/matzehuels/runmap/pkg/mapgraph.Graph
package render
