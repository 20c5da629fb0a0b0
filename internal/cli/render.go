package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/pipeline"
	"github.com/matzehuels/runmap/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output base path
	formats  string // comma-separated formats
	engine   string // graphviz engine: neato or dot
	scale    float64
	detailed bool
}

// renderCommand creates the render command. Defaults come from the [render]
// section of the config file.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags mapFlags
		opts  renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a map to svg, png, pdf, dot, json or txt",
		Example: `  runmap render --seed 12345 -f svg,png
  runmap render -i map.json -f pdf --engine dot -o out/map`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ro, err := c.renderOptions(cmd, opts)
			if err != nil {
				return err
			}

			g, runner, err := c.buildMap(cmd.Context(), cmd, &flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			artifacts, hit, err := runner.Render(cmd.Context(), g, ro)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %s", strings.Join(ro.Formats, ", ")))

			base := basePath(opts.output, fmt.Sprintf("map-%d", g.Seed()))
			if hit {
				printInfo("All artifacts served from cache")
			}
			printSuccess("Rendered map %s", StyleHighlight.Render(fmt.Sprintf("seed %d", g.Seed())))
			for _, format := range ro.Formats {
				path := base + "." + format
				if err := writeFile(path, artifacts[format]); err != nil {
					return err
				}
				printFile(path)
			}
			return nil
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: map-<seed>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, pdf, dot, json, txt (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz engine: neato (pinned positions) or dot (ranked)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with id, layer and position")
	return cmd
}

// renderOptions merges flags over the config file's render section.
func (c *CLI) renderOptions(cmd *cobra.Command, opts renderOpts) (pipeline.RenderOptions, error) {
	rc := c.cfg.Render
	ro := pipeline.RenderOptions{
		Formats:  rc.Formats,
		Engine:   render.Engine(rc.Engine),
		Scale:    rc.Scale,
		Detailed: rc.Detailed,
	}
	if opts.formats != "" {
		ro.Formats = pipeline.ParseFormats(opts.formats)
	}
	if opts.engine != "" {
		ro.Engine = render.Engine(opts.engine)
	}
	if cmd.Flags().Changed("scale") {
		ro.Scale = opts.scale
	}
	if cmd.Flags().Changed("detailed") {
		ro.Detailed = opts.detailed
	}
	if err := pipeline.ValidateFormats(ro.Formats); err != nil {
		return ro, err
	}
	return ro, nil
}

// basePath strips a known format extension from output, or falls back to def.
func basePath(output, def string) string {
	if output == "" {
		return def
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
