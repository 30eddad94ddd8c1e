// Package svg renders laid-out scenes as SVG.
//
// # Backend
//
// [Backend] implements [scene.Backend]. Frames measured through it ask for
// room for their title and legend, and every placed element's box is
// recorded so callers can inspect the geometry after layout:
//
//	b := svg.NewBackend()
//	s, _ := scene.New(800, 600, scene.WithBackend(b))
//	// ... dispatch recipes ...
//	s.Layout()
//	r, ok := b.Geometry(frame)
//
// # Rendering
//
// [RenderSVG] walks the layout tree and draws frames with their layers and
// legends, text blocks and surfaces. Line layers become polylines, marker
// layers circles, and heatmap layers a grid of colored cells.
//
//	data := svg.RenderSVG(s, svg.WithGridLines())
//
// [RenderPDF] and [RenderPNG] convert the SVG with rsvg-convert.
package svg
