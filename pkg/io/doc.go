// Package io reads scene descriptions and writes resolved layouts.
//
// # Overview
//
// A scene description lists the recipe calls that build a scene, in order.
// It is written in TOML or YAML (JSON is accepted by [ReadScene] for the
// HTTP API):
//
//	width = 800
//	height = 600
//
//	[[call]]
//	recipe = "lines"
//	name = "main"
//	[call.frame]
//	title = "Throughput"
//	[call.layer]
//	label = "p50"
//	y = [1, 3, 2]
//
//	[[call]]
//	recipe = "scatter"
//	into = "main"
//	[call.layer]
//	label = "raw"
//	y = [1.2, 2.8, 2.1]
//
// # Targets
//
// The target of a call is inferred from the fields it sets:
//
//   - into: draw into a frame named by an earlier call
//   - at (and optionally grid, span): place at a cell of the named grid, or
//     of the root grid when grid is empty
//   - neither: append to the scene next to the existing content
//
// A call's name registers its first frame and its grid. Facets are
// registered as "name/row,col" and custom frames as "name/frame".
//
// # Import
//
// Use [ImportScene] to read a file, or [ReadScene] to read from any
// io.Reader, then [Build] to run the calls:
//
//	doc, err := io.ImportScene("dashboard.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	built, err := io.Build(ctx, recipe.NewDispatcher(nil), doc)
//
// [Document.Validate] checks references between calls before any recipe
// runs.
//
// # Layout Export
//
// [WriteLayout] and [ExportLayout] write the resolved layout tree as JSON:
// every element with its kind, cell span and box, and every frame with its
// layers and legend entries. External tools can use it to draw the scene
// with their own backend.
package io
