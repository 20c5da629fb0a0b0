package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/render"
)

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// showCommand prints a map as one table row per layer.
func (c *CLI) showCommand() *cobra.Command {
	var (
		flags mapFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a map as a table of layers",
		Example: `  runmap show --seed 12345
  runmap show -i map.json --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				uiOut = cmd.ErrOrStderr()
			}
			g, runner, err := c.buildMap(cmd.Context(), cmd, &flags)
			if err != nil {
				return err
			}
			runner.Close()

			out := cmd.OutOrStdout()
			if plain {
				_, err := fmt.Fprint(out, render.ToASCII(g))
				return err
			}
			fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("Map %d", g.Seed())))
			fmt.Fprintln(out, layerTable(g, nil))
			fmt.Fprintln(out, typeLegend(g))
			return nil
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&plain, "plain", false, "print uncoloured text, one line per layer")
	return cmd
}

// layerTable renders each layer left to right. Nodes in mark are drawn
// reversed, which the walk view uses for visited nodes.
func layerTable(g *mapgraph.Graph, mark func(mapgraph.NodeID) bool) string {
	rows := make([][]string, 0, g.LayerCount())
	for l := g.LayerCount() - 1; l >= 0; l-- {
		cells := make([]string, 0, len(g.Layer(l)))
		for _, id := range g.Layer(l) {
			n, _ := g.Node(id)
			style := typeStyle(n.Type)
			if mark != nil && mark(id) {
				style = style.Reverse(true)
			}
			cells = append(cells, style.Render(fmt.Sprintf("%s#%d", n.Type, id)))
		}
		rows = append(rows, []string{fmt.Sprintf("L%d", l), strings.Join(cells, " ")})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layer", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// typeLegend lists the count of each node type present in g.
func typeLegend(g *mapgraph.Graph) string {
	counts := g.TypeCounts()
	var parts []string
	for _, t := range mapgraph.AllTypes() {
		if counts[t] == 0 {
			continue
		}
		parts = append(parts, typeStyle(t).Render(fmt.Sprintf("%s %d", t, counts[t])))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
