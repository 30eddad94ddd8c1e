package pipeline

import (
	"context"

	"github.com/matzehuels/scenegrid/pkg/core/recipe"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
	"github.com/matzehuels/scenegrid/pkg/render/svg"
)

// =============================================================================
// Layout Generation
// =============================================================================

// BuildScene runs the calls of doc against a fresh scene measured by the SVG
// backend and resolves its layout. A non-zero Width or Height in opts
// overrides the size in the description.
func BuildScene(ctx context.Context, d *recipe.Dispatcher, doc *sceneio.Document, opts Options) (*sceneio.Built, error) {
	if d == nil {
		d = recipe.NewDispatcher(nil, recipe.WithLogger(opts.Logger))
	}
	sized := *doc
	if opts.Width > 0 {
		sized.Width = opts.Width
	}
	if opts.Height > 0 {
		sized.Height = opts.Height
	}

	sceneOpts := []scene.Option{scene.WithBackend(svg.NewBackend())}
	if opts.Logger != nil {
		sceneOpts = append(sceneOpts, scene.WithLogger(opts.Logger))
	}
	return sceneio.Build(ctx, d, &sized, sceneOpts...)
}

// countLayers returns the number of frames and layers in s.
func countLayers(s *scene.Scene) (frames, layers int) {
	for _, f := range s.Frames() {
		frames++
		layers += len(f.Layers())
	}
	return frames, layers
}
