package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/runmap/pkg/cache"
	"github.com/matzehuels/runmap/pkg/errors"
	"github.com/matzehuels/runmap/pkg/mapgen"
	"github.com/matzehuels/runmap/pkg/mapgraph"
	"github.com/matzehuels/runmap/pkg/observability"
	"github.com/matzehuels/runmap/pkg/render"
)

// Runner encapsulates generation and rendering with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the default entry lifetimes when non-zero.
	TTL time.Duration

	// inflight coalesces concurrent generations of the same map.
	inflight singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Generate returns the map for opts and whether it came from the cache. A
// cached export that fails to decode, or that belongs to a different seed,
// is regenerated.
func (r *Runner) Generate(ctx context.Context, opts Options) (*mapgraph.Graph, bool, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.MapKey(int64(opts.Seed), opts.Config)
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			g, err := mapgraph.ReadJSON(bytes.NewReader(data))
			if err == nil && g.Seed() == opts.Seed {
				hooks.OnCacheHit(ctx, "map")
				r.Logger.Debug("map cache hit", "seed", opts.Seed)
				return g, true, nil
			}
			r.Logger.Warn("discarding unreadable cached map", "seed", opts.Seed, "error", err)
		}
	}
	hooks.OnCacheMiss(ctx, "map")

	v, err, _ := r.inflight.Do(key, func() (any, error) {
		return r.generate(ctx, key, opts)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*mapgraph.Graph), false, nil
}

func (r *Runner) generate(ctx context.Context, key string, opts Options) (*mapgraph.Graph, error) {
	g, err := mapgen.NewGenerator(opts.Config, r.Logger).Generate(ctx, opts.Seed)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("generated map",
		"seed", opts.Seed,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"warnings", len(g.Warnings()))

	if data, err := mapgraph.EncodeJSON(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.MapTTL)); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "map", len(data))
		}
	}
	return g, nil
}

// Render produces the requested artifacts for g. The second result is true
// when every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, g *mapgraph.Graph, opts RenderOptions) (map[string][]byte, bool, error) {
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Render()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, allHit, err := r.render(ctx, g, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered artifacts", "opts", opts, "cached", allHit, "duration", time.Since(start))
	return artifacts, allHit, nil
}

func (r *Runner) render(ctx context.Context, g *mapgraph.Graph, opts RenderOptions) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	a := &artifactSet{g: g, opts: opts}

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(g.Fingerprint(), opts.artifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allHit = false

		data, err := a.build(format)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.ArtifactTTL)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allHit, nil
}

// artifactSet renders formats on demand and shares the DOT and SVG
// intermediates between them.
type artifactSet struct {
	g    *mapgraph.Graph
	opts RenderOptions
	dot  string
	svg  []byte
}

func (a *artifactSet) build(format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return mapgraph.EncodeJSON(a.g)
	case FormatTXT:
		return []byte(render.ToASCII(a.g)), nil
	case FormatDOT:
		return []byte(a.dotSource()), nil
	case FormatSVG:
		return a.svgBytes()
	case FormatPNG:
		svg, err := a.svgBytes()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, a.opts.Scale)
	case FormatPDF:
		svg, err := a.svgBytes()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
}

func (a *artifactSet) dotSource() string {
	if a.dot == "" {
		a.dot = render.ToDOT(a.g, render.Options{Detailed: a.opts.Detailed, Engine: a.opts.Engine})
	}
	return a.dot
}

func (a *artifactSet) svgBytes() ([]byte, error) {
	if a.svg == nil {
		svg, err := render.RenderSVG(a.dotSource(), a.opts.Engine)
		if err != nil {
			return nil, err
		}
		a.svg = svg
	}
	return a.svg, nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
