// Package pipeline runs map generation and rendering behind a cache.
//
// The CLI and any other entry point go through a [Runner] so that caching,
// logging and observability hooks behave the same everywhere.
//
// # Stages
//
//  1. Generate: build the map for a seed and configuration, or load its JSON
//     export from the cache
//  2. Render: produce artifacts (json, dot, svg, png, pdf, txt), cached by
//     map fingerprint and render settings
//
// [Runner.Survey] generates many maps in parallel and aggregates statistics.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	g, hit, err := runner.Generate(ctx, pipeline.Options{Seed: 12345, Config: mapgen.DefaultConfig()})
//	artifacts, _, err := runner.Render(ctx, g, pipeline.RenderOptions{Formats: []string{"svg"}})
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/runmap/pkg/cache"
	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/render"
	"github.com/matzehuels/runmap/pkg/seed"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatTXT  = "txt"
)

// ValidFormats lists the supported output formats in rendering order.
var ValidFormats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatTXT}

// DefaultPNGScale is the PNG resolution multiplier when none is set.
const DefaultPNGScale = 2.0

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Options selects the map to generate.
type Options struct {
	Seed   seed.Seed
	Config mapgen.Config
	// Refresh bypasses the cache read but still stores the result.
	Refresh bool
}

// RenderOptions controls artifact rendering.
type RenderOptions struct {
	Formats  []string
	Engine   render.Engine
	Scale    float64 // PNG scale factor
	Detailed bool
}

func (o *RenderOptions) validateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	engine, err := render.ParseEngine(string(o.Engine))
	if err != nil {
		return err
	}
	o.Engine = engine
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return nil
}

func (o RenderOptions) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT, FormatSVG, FormatPDF:
		opts.Engine, opts.Detailed = string(o.Engine), o.Detailed
	case FormatPNG:
		opts.Engine, opts.Detailed, opts.Scale = string(o.Engine), o.Detailed, o.Scale
	}
	return opts
}

// String describes the options for logs.
func (o RenderOptions) String() string {
	return fmt.Sprintf("formats=%s engine=%s", strings.Join(o.Formats, ","), o.Engine)
}
