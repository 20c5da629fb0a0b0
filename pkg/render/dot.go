package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// Engine names a Graphviz layout engine.
type Engine string

const (
	EngineDot   Engine = "dot"
	EngineNeato Engine = "neato"
)

// DefaultScale is the number of map units drawn per inch.
const DefaultScale = 100.0

// ParseEngine returns the engine with the given name. An empty name selects
// EngineNeato.
func ParseEngine(name string) (Engine, error) {
	switch Engine(strings.ToLower(name)) {
	case "", EngineNeato:
		return EngineNeato, nil
	case EngineDot:
		return EngineDot, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unknown layout engine %q (want dot or neato)", name)
}

// Options configures DOT generation.
type Options struct {
	// Detailed adds id, layer and position to node labels.
	Detailed bool
	// Engine selects how nodes are placed. Zero means EngineNeato.
	Engine Engine
	// Scale is map units per inch for pinned positions. Zero means DefaultScale.
	Scale float64
}

var typeColors = map[mapgraph.NodeType]string{
	mapgraph.Battle:     "lightgrey",
	mapgraph.Elite:      "tomato",
	mapgraph.Boss:       "magenta",
	mapgraph.Event:      "gold",
	mapgraph.Shop:       "cyan",
	mapgraph.Rest:       "palegreen",
	mapgraph.CardRemove: "lightskyblue",
}

// TypeColor returns the fill colour used for t.
func TypeColor(t mapgraph.NodeType) string {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return "white"
}

// ToDOT converts a map to Graphviz DOT. Node names are the node ids. With
// EngineNeato every node carries a pinned pos attribute with y pointing
// down, so layer 0 is drawn at the top.
func ToDOT(g *mapgraph.Graph, opts Options) string {
	if opts.Engine == "" {
		opts.Engine = EngineNeato
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.9, fontsize=11];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	if opts.Engine == EngineNeato {
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  ranksep=0.6;\n")
		buf.WriteString("  nodesep=0.4;\n")
	}
	buf.WriteString("\n")

	for i := range g.LayerCount() {
		layer := g.Layer(i)
		if opts.Engine == EngineDot {
			fmt.Fprintf(&buf, "  { rank=same;")
			for _, id := range layer {
				fmt.Fprintf(&buf, " %d;", id)
			}
			buf.WriteString(" }\n")
		}
		for _, id := range layer {
			n, _ := g.Node(id)
			fmt.Fprintf(&buf, "  %d [%s];\n", id, strings.Join(nodeAttrs(n, opts), ", "))
		}
	}

	buf.WriteString("\n")
	for i := range g.LayerCount() {
		for _, id := range g.Layer(i) {
			for _, c := range g.Children(id) {
				fmt.Fprintf(&buf, "  %d -> %d;\n", id, c)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n mapgraph.Node, opts Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed)),
		fmt.Sprintf("fillcolor=%q", TypeColor(n.Type)),
	}
	if opts.Engine == EngineNeato {
		attrs = append(attrs, fmt.Sprintf(`pos="%.2f,%.2f!"`, n.Position.X/opts.Scale, -n.Position.Y/opts.Scale))
	}
	if n.Type == mapgraph.Boss {
		attrs = append(attrs, "shape=doublecircle", "width=1.2")
	}
	return attrs
}

func nodeLabel(n mapgraph.Node, detailed bool) string {
	if !detailed {
		return n.Type.String()
	}
	return fmt.Sprintf("%s\n#%d L%d\n(%.0f, %.0f)", n.Type, n.ID, n.Layer, n.Position.X, n.Position.Y)
}
