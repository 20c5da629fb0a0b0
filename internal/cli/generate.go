package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgraph"
)

// generateCommand creates the generate command, which writes the JSON export
// of a map to a file or stdout.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  mapFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a map and export it as JSON",
		Example: `  runmap generate --seed 12345 -o map.json
  runmap generate --layers 12 --max-nodes 4 > map.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				// Keep stdout clean for the JSON.
				uiOut = cmd.ErrOrStderr()
			}
			g, runner, err := c.buildMap(cmd.Context(), cmd, &flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			if output == "" {
				return mapgraph.WriteJSON(cmd.OutOrStdout(), g)
			}
			if err := writeJSONFile(output, g); err != nil {
				return err
			}
			printSuccess("Map %s", StyleHighlight.Render(fmt.Sprintf("seed %d", g.Seed())))
			printFile(output)
			printNextStep("Render it", fmt.Sprintf("runmap render -i %s -f svg", output))
			return nil
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func writeJSONFile(path string, g *mapgraph.Graph) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mapgraph.WriteJSON(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
