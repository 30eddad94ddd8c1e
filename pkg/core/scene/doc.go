// Package scene holds the layout tree of a visualization scene.
//
// # Overview
//
// A [Scene] is the top-level drawing surface. It owns at most one root
// [Grid] and a set of top-level elements. Grids hold ordered row and column
// tracks (sized by [box.Policy]) and a list of placements mapping a [Span]
// to an [Element].
//
// Elements form a closed set:
//
//   - [Frame]: a coordinate frame owning plotted [Layer] values and a [Legend]
//   - [TextBlock]: a block of text, optionally mirroring a frame's legend
//   - [Surface]: a generic drawing surface with an intrinsic size (colorbars)
//   - [Grid]: a nested sub-layout
//
// # Layout
//
// [Grid.Resolve] runs [box.Resolve] per axis and places every content
// element into the union of the tracks its span covers, recursing into
// nested grids. Resolution is deterministic and idempotent.
//
// # Ownership
//
// Each element sits in at most one grid cell; placing it elsewhere detaches
// it first. References from grids and elements back to their scene are weak
// and never keep a scene alive. Inserting a grid into itself or into one of
// its descendants fails with CYCLE_DETECTED, so the tree has no cycles.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. Tree mutation and
// resolution run on one goroutine; drawing work done elsewhere must hand its
// finished [Layer] back before it is attached to a [Frame].
package scene
