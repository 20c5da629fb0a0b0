package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/runstore"
	"github.com/matzehuels/runmap/pkg/traversal"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// WalkModel - Interactive traversal
// =============================================================================

// WalkModel is the bubbletea model for stepping through a map. When Save is
// set it is called with the new state after every move.
type WalkModel struct {
	Tracker *traversal.Tracker
	Cursor  int
	Save    func(traversal.State) error
	Err     error
}

// NewWalkModel creates a walk model positioned wherever tr stands.
func NewWalkModel(tr *traversal.Tracker) WalkModel {
	return WalkModel{Tracker: tr}
}

func (m WalkModel) Init() tea.Cmd {
	return nil
}

func (m WalkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	next := m.Tracker.Reachable()
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "right", "l":
		if m.Cursor < len(next)-1 {
			m.Cursor++
		}
	case "enter", " ":
		if len(next) == 0 {
			return m, tea.Quit
		}
		if err := m.Tracker.Move(next[m.Cursor]); err != nil {
			m.Err = err
			return m, nil
		}
		m.Cursor = 0
		m.Err = nil
		if m.Save != nil {
			if err := m.Save(m.Tracker.State()); err != nil {
				m.Err = err
			}
		}
	}
	return m, nil
}

func (m WalkModel) View() string {
	var b strings.Builder
	tr := m.Tracker
	g := tr.Graph()

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Map %d", g.Seed())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ choose  ⏎ move  q quit"))
	b.WriteString("\n\n")
	b.WriteString(layerTable(g, tr.Visited))
	b.WriteString("\n\n")

	cur, _ := g.Node(tr.Current())
	b.WriteString(fmt.Sprintf("Standing on %s in layer %d\n", typeStyle(cur.Type).Render(fmt.Sprintf("%s#%d", cur.Type, cur.ID)), cur.Layer))

	if tr.Finished() {
		b.WriteString(StyleSuccess.Render("Boss reached. Press enter to leave."))
	} else {
		for i, id := range tr.Reachable() {
			n, _ := g.Node(id)
			label := fmt.Sprintf("%s#%d", n.Type, id)
			if i == m.Cursor {
				b.WriteString(listSelectedStyle.Render("▸ " + label))
			} else {
				b.WriteString(listNormalStyle.Render("  " + label))
			}
			b.WriteString("  ")
		}
	}
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// walk command
// =============================================================================

func (c *CLI) walkCommand() *cobra.Command {
	var (
		flags mapFlags
		runID string
	)

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Traverse a map interactively",
		Long: `Walk a map from the start node to the boss, one layer at a time.

With --run the map and progress come from the run store and every move is
saved, so the walk can be resumed later.`,
		Example: `  runmap walk --seed 12345
  runmap walk --run 2f1c0b7e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if runID != "" {
				return c.walkRun(ctx, runID)
			}
			g, runner, err := c.buildMap(ctx, cmd, &flags)
			if err != nil {
				return err
			}
			runner.Close()
			return runWalk(NewWalkModel(traversal.New(g)))
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVar(&runID, "run", "", "resume a saved run by id")
	return cmd
}

// walkRun resumes a stored run and saves each move back to the store.
func (c *CLI) walkRun(ctx context.Context, id string) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tr, err := resumeRun(ctx, store, id)
	if err != nil {
		return err
	}
	m := NewWalkModel(tr)
	m.Save = func(st traversal.State) error {
		return store.SaveProgress(ctx, id, st)
	}
	return runWalk(m)
}

// resumeRun regenerates the run's map and replays its saved progress.
func resumeRun(ctx context.Context, store *runstore.Store, id string) (*traversal.Tracker, error) {
	run, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := store.Replay(ctx, run)
	if err != nil {
		return nil, err
	}
	st, err := store.LoadProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	return traversal.Restore(g, st)
}

func runWalk(m WalkModel) error {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	wm := final.(WalkModel)
	printPath(wm.Tracker)
	return wm.Err
}

func printPath(tr *traversal.Tracker) {
	g := tr.Graph()
	steps := make([]string, 0, len(tr.Path()))
	for _, id := range tr.Path() {
		t, _ := g.Type(id)
		steps = append(steps, typeStyle(t).Render(t.String()))
	}
	printInfo("Path: %s", strings.Join(steps, StyleDim.Render(" "+iconArrow+" ")))
	if tr.Finished() {
		printSuccess("Reached the boss in %d steps", len(steps)-1)
	}
}
