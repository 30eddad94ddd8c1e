// Package pipeline provides the scene rendering pipeline for scenegrid.
//
// This package implements the complete parse → layout → render pipeline that
// is used by the CLI render command and the HTTP server. By centralizing this
// logic, both entry points cache and render the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read a TOML or YAML scene description
//  2. Layout: Run its recipe calls and resolve the grid tree
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Rendered artifacts are cached by the hash of the scene description and the
// render options. When every requested artifact is cached the layout stage
// is skipped.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "dashboard.toml",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenegrid/pkg/cache"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Path   string `json:"path,omitempty"`   // Scene description file
	Source string `json:"source,omitempty"` // Inline scene description, used when Path is empty
	Format string `json:"format,omitempty"` // Encoding of Source: toml, yaml or json

	// Layout options
	Width  float64 `json:"width,omitempty"` // Overrides the size in the description
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	GridLines bool     `json:"grid_lines,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // Detailed DOT labels
	Scale     float64  `json:"scale,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"` // Ignore cached artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed scene description.
	Document *sceneio.Document

	// SceneHash is the content hash of the description and layout options.
	SceneHash string

	// Scene is the built scene. It is nil when every artifact came from cache.
	Scene *scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Calls      int
	Frames     int
	Layers     int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("size %vx%v is negative", o.Width, o.Height)
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that a scene description is given.
func (o *Options) ValidateForParse() error {
	if o.Path == "" && o.Source == "" {
		return fmt.Errorf("path or source is required")
	}
	if o.Path == "" && o.Format == "" {
		return fmt.Errorf("format is required for inline sources")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SceneKeyOpts returns cache key options for the layout stage.
func (o *Options) SceneKeyOpts(recipes []string) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Width:   o.Width,
		Height:  o.Height,
		Recipes: recipes,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		opts.GridLines = o.GridLines
	case FormatDOT:
		opts.Detailed = o.Detailed
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
