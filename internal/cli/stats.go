package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/pipeline"
	"github.com/matzehuels/runmap/pkg/seed"
)

// statsCommand generates a batch of maps from consecutive seeds and prints
// aggregate statistics. It fails if any map breaks a placement rule.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags       mapFlags
		count       int
		concurrency int
		start       int64
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Generate many maps and summarise them",
		Example: `  runmap stats --count 1000
  runmap stats --count 500 --start 42 --layers 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--count must be at least 1, got %d", count)
			}
			seeds := make([]seed.Seed, count)
			for i := range seeds {
				seeds[i] = seed.Seed(start + int64(i))
			}
			cfg := flags.config(cmd, c.cfg.Map)

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Generating %d maps...", count))
			spinner.Start()
			sum, err := runner.Survey(cmd.Context(), cfg, seeds, concurrency)
			spinner.Stop()
			if err != nil {
				return err
			}

			printSummary(sum)
			if n := sum.TotalViolations(); n > 0 {
				return errors.New(errors.ErrCodeInternal, "%d rule violations across %d maps", n, sum.Maps)
			}
			return nil
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of maps to generate")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.GOMAXPROCS(0), "maximum concurrent generations")
	cmd.Flags().Int64Var(&start, "start", 0, "first seed; later maps use start+1, start+2, ...")
	return cmd
}

func printSummary(s *pipeline.Summary) {
	printSuccess("Generated %s maps in %s", StyleNumber.Render(fmt.Sprint(s.Maps)), s.Duration.Round(time.Millisecond))
	printNewline()

	printKeyValue("Nodes", fmt.Sprintf("%d (%.1f per map)", s.Nodes, float64(s.Nodes)/float64(s.Maps)))
	printKeyValue("Edges", fmt.Sprintf("%d (%.1f per map)", s.Edges, float64(s.Edges)/float64(s.Maps)))
	printKeyValue("Crossings", fmt.Sprintf("%.2f per map", s.MeanCrossings))
	printNewline()

	for _, t := range s.SortedTypes() {
		printKeyValue(t.String(), typeStyle(t).Render(fmt.Sprintf("%6d  %5.1f%%", s.Types[t], 100*s.TypeShare(t))))
	}

	if len(s.Warnings) > 0 {
		printNewline()
		for code, n := range s.Warnings {
			printWarning("%s: %d", code, n)
		}
	}
	if len(s.Violations) > 0 {
		printNewline()
		for rule, n := range s.Violations {
			printError("%s: %d", rule, n)
		}
	}
}
