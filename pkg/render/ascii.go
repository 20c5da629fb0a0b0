package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// ToASCII lists the map one layer per line in display order. Each node is
// written as Type#id followed by its children:
//
//	L0  Battle#0>1,2
//	L1  Event#1>3  Battle#2>3,4
func ToASCII(g *mapgraph.Graph) string {
	var b strings.Builder
	width := len(fmt.Sprint(g.LayerCount() - 1))
	for i := range g.LayerCount() {
		fmt.Fprintf(&b, "L%-*d", width, i)
		for _, id := range g.Layer(i) {
			t, _ := g.Type(id)
			fmt.Fprintf(&b, "  %s#%d", t, id)
			if kids := g.Children(id); len(kids) > 0 {
				b.WriteByte('>')
				for j, c := range kids {
					if j > 0 {
						b.WriteByte(',')
					}
					fmt.Fprint(&b, c)
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
