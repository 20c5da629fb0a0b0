package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/runstore"
)

// runCommand groups the saved-run subcommands.
func (c *CLI) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage saved runs",
	}

	cmd.AddCommand(c.runNewCommand())
	cmd.AddCommand(c.runShowCommand())
	cmd.AddCommand(c.runListCommand())
	cmd.AddCommand(c.runDeleteCommand())

	return cmd
}

// runNewCommand creates a run. Without --seed the seed is derived from the
// run id, so the id alone reproduces the map.
func (c *CLI) runNewCommand() *cobra.Command {
	var flags mapFlags

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := flags.config(cmd, c.cfg.Map)
			var (
				run *runstore.Run
				g   *mapgraph.Graph
			)
			if flags.seed == "" {
				run, g, err = store.CreateDerived(ctx, cfg)
			} else {
				s, _, perr := flags.resolveSeed()
				if perr != nil {
					return perr
				}
				run, g, err = store.Create(ctx, s, cfg)
			}
			if err != nil {
				return err
			}

			printSuccess("Started run %s", StyleHighlight.Render(run.ID))
			printStats(g.NodeCount(), g.EdgeCount(), false)
			for _, w := range g.Warnings() {
				printWarning("%s: %s", w.Code, w.Message)
			}
			printNewline()
			printNextStep("Walk it", "runmap walk --run "+run.ID)
			return nil
		},
	}

	flags.bind(cmd, false)
	return cmd
}

func (c *CLI) runShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a run and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			tr, err := resumeRun(ctx, store, run.ID)
			if err != nil {
				return err
			}
			g := tr.Graph()

			printKeyValue("Run", run.ID)
			printKeyValue("Seed", run.Seed.String())
			printKeyValue("Layers", fmt.Sprint(g.LayerCount()))
			printKeyValue("Fingerprint", run.Fingerprint[:12])
			printKeyValue("Created", formatRelativeTime(run.CreatedAt))
			printKeyValue("Updated", formatRelativeTime(run.UpdatedAt))
			cur, _ := g.Node(tr.Current())
			status := fmt.Sprintf("layer %d of %d", cur.Layer, g.LayerCount()-1)
			if tr.Finished() {
				status = StyleSuccess.Render("finished")
			}
			printKeyValue("Progress", status)
			printNewline()
			fmt.Fprintln(uiOut, layerTable(g, tr.Visited))
			return nil
		},
	}
}

func (c *CLI) runListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No saved runs")
				printNextStep("Start one", "runmap run new")
				return nil
			}
			fmt.Fprintln(uiOut, runTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 for all)")
	return cmd
}

func (c *CLI) runDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a run and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

func runTable(runs []runstore.Run) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.Seed.String(),
			fmt.Sprint(r.Config.NumberOfLayers),
			fmt.Sprint(r.Current),
			formatRelativeTime(r.UpdatedAt),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Seed", "Layers", "At node", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
