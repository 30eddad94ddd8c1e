// Package pkg provides the core libraries for scenegrid.
//
// # Overview
//
// scenegrid composes figures out of frames placed on nested, resizable grids.
// Named recipes draw layers into frames; the dispatcher creates whatever
// scene, grid cell and frames a call needs, and every frame aggregates the
// legend entries of its labelled layers. The pkg directory is organized into
// these areas:
//
//  1. [core] - Domain logic (box model, scene tree, recipe dispatch)
//  2. [io] - Scene descriptions (TOML, YAML, JSON) and layout export
//  3. [render] - Visual output (SVG, PNG, PDF, Graphviz)
//  4. [pipeline] - Orchestration (parse → layout → render)
//  5. [cache] - File and Redis caching of rendered artifacts
//
// # Architecture
//
// The typical data flow:
//
//	Scene description (dashboard.toml)
//	         ↓
//	    [io] package (decode calls)
//	         ↓
//	    [core/recipe] package (dispatch onto a scene)
//	         ↓
//	    [core/scene] + [core/box] packages (grid tree, track resolution)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
// Draw two recipes into one frame and render the scene:
//
//	d := recipe.NewDispatcher(nil)
//	res, _ := d.Run(ctx, "lines", recipe.Target{}, recipe.Params{
//	    Layer: recipe.Values{"label": "p50", "y": []any{1, 3, 2}},
//	})
//	d.Run(ctx, "scatter", recipe.Target{Frame: res.Infra.Frame()}, recipe.Params{
//	    Layer: recipe.Values{"label": "raw"},
//	})
//	out := svg.RenderSVG(res.Infra.Scene())
//
// # Main Packages
//
// [core/box] - Axis-aligned rectangles and track policies (fixed, auto,
// relative) resolved against the available space.
//
// [core/scene] - The scene container, grids with spanning cells and nested
// sub-layouts, frames with their layers and legends, and the coordinate
// frames that map grid cells to boxes.
//
// [core/recipe] - The recipe registry and the dispatcher that runs calls in
// any of the five call shapes, returning what it created or reused.
//
// [pipeline] - Complete rendering pipeline used by the CLI and the HTTP
// server. Ensures consistent caching and output across entry points.
//
// [errors] - Coded errors shared by every package, with categories that map
// to exit statuses and HTTP status codes.
//
// [observability] - Hooks for layout, dispatch, render, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/core/scene/...  # Specific package
//	go test -run Golden ./pkg/render/dot -update  # Refresh golden files
//
// [core]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/core
// [core/box]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/core/box
// [core/scene]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/core/scene
// [core/recipe]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/core/recipe
// [io]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/scenegrid/pkg/observability
package pkg
