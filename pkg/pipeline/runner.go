package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenegrid/pkg/cache"
	"github.com/matzehuels/scenegrid/pkg/core/recipe"
	"github.com/matzehuels/scenegrid/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, dispatcher and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	Dispatcher *recipe.Dispatcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The runner dispatches the built-in recipes.
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
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		Dispatcher: recipe.NewDispatcher(nil, recipe.WithLogger(logger)),
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, raw, err := Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Document = doc
	result.Stats.Calls = len(doc.Calls)
	result.Stats.ParseTime = time.Since(parseStart)

	keyOpts := opts.SceneKeyOpts(r.Dispatcher.Registry().Names())
	dw, dh := r.Dispatcher.SceneSize()
	if keyOpts.Width == 0 {
		keyOpts.Width = dw
	}
	if keyOpts.Height == 0 {
		keyOpts.Height = dh
	}
	sceneKey := r.Keyer.SceneKey(cache.Hash(raw), keyOpts)
	result.SceneHash = cache.Hash([]byte(sceneKey))

	r.Logger.Info("parsed scene",
		"calls", len(doc.Calls),
		"duration", result.Stats.ParseTime)

	// Cached artifacts skip the layout stage entirely.
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, sceneKey, opts); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Info("artifacts from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	built, err := BuildScene(ctx, r.Dispatcher, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Scene = built.Scene
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Frames, result.Stats.Layers = countLayers(built.Scene)

	r.Logger.Info("computed layout",
		"frames", result.Stats.Frames,
		"layers", result.Stats.Layers,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Render().OnRenderStart(ctx, opts.Formats)
	artifacts, err := Render(ctx, built.Scene, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Render().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts

	for format, data := range artifacts {
		ttl := cache.TTLArtifact
		if format == FormatJSON {
			ttl = cache.TTLScene
		}
		key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// cachedArtifacts returns every requested format from the cache, or false
// if any of them is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, sceneKey string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Debug("cache read failed", "format", format, "error", err)
		}
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
