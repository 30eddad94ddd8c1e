// Package render turns laid-out scenes into visual output.
//
// # Overview
//
// This package holds the format conversion shared by the renderers:
//
//   - SVG rendering of scenes (in [svg] subpackage)
//   - Graphviz export of the layout tree (in [dot] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	data := svg.RenderSVG(s)
//	pdf, err := render.ToPDF(data)
//	png, err := render.ToPNG(data, 2.0)  // 2x scale
//
// # Layout Trees
//
// The [dot] subpackage writes the grid tree of a scene as a Graphviz digraph,
// which helps when debugging nested sub-layouts.
//
//	src := dot.ToDOT(s, dot.Options{Detailed: true})
//	out, err := dot.RenderSVG(src)
//
// [svg]: github.com/matzehuels/scenegrid/pkg/render/svg
// [dot]: github.com/matzehuels/scenegrid/pkg/render/dot
package render
