package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/render"
)

// Options configures layout tree export.
type Options struct {
	// Detailed adds the placed box and, for frames, the layer count to node
	// labels. When false, only the element kind and cell are shown.
	Detailed bool
}

// ToDOT converts the layout tree of s to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are named in visiting order so the output does not depend on element
// IDs. Nested grids are drawn dashed with a grey fill. Top-level elements
// that are not part of the tree hang off the scene node with dotted edges.
func ToDOT(s *scene.Scene, opts Options) string {
	w := &writer{opts: opts, names: make(map[scene.Element]string)}
	w.buf.WriteString("digraph layout {\n")
	w.buf.WriteString("  rankdir=TB;\n")
	w.buf.WriteString("  bgcolor=\"transparent\";\n")
	w.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	w.buf.WriteString("  ranksep=0.4;\n")
	w.buf.WriteString("  nodesep=0.3;\n")
	w.buf.WriteString("\n")

	size := s.Size()
	fmt.Fprintf(&w.buf, "  %q [label=%q, shape=folder];\n", "scene", fmt.Sprintf("scene %gx%g", size.W, size.H))

	if root := s.Root(); root != nil {
		w.visit(root, "", false)
		w.edges = append(w.edges, fmt.Sprintf("  %q -> %q;", "scene", w.names[root]))
	}
	for _, e := range s.Elements() {
		if _, ok := w.names[e]; ok {
			continue
		}
		w.visit(e, "", false)
		w.edges = append(w.edges, fmt.Sprintf("  %q -> %q [style=dotted];", "scene", w.names[e]))
	}

	w.buf.WriteString("\n")
	for _, e := range w.edges {
		w.buf.WriteString(e)
		w.buf.WriteString("\n")
	}
	w.buf.WriteString("}\n")
	return w.buf.String()
}

type writer struct {
	opts  Options
	buf   bytes.Buffer
	names map[scene.Element]string
	edges []string
}

func (w *writer) visit(e scene.Element, cell string, nested bool) {
	name := "n" + strconv.Itoa(len(w.names))
	w.names[e] = name

	label := fmtLabel(e, cell, w.opts.Detailed)
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if _, ok := e.(*scene.Grid); ok && nested {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(&w.buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))

	g, ok := e.(*scene.Grid)
	if !ok {
		return
	}
	for _, p := range g.Contents() {
		if _, seen := w.names[p.Content]; seen {
			continue
		}
		w.visit(p.Content, p.Span.String(), true)
		w.edges = append(w.edges, fmt.Sprintf("  %q -> %q;", name, w.names[p.Content]))
	}
}

func fmtLabel(e scene.Element, cell string, detailed bool) string {
	head := e.Kind().String()
	switch v := e.(type) {
	case *scene.Grid:
		head = fmt.Sprintf("grid %dx%d", v.NumRows(), v.NumCols())
	case *scene.Frame:
		if v.Title() != "" {
			head += ": " + v.Title()
		}
	case *scene.Surface:
		if v.Name() != "" {
			head += ": " + v.Name()
		}
	}

	parts := []string{head}
	if cell != "" {
		parts = append(parts, cell)
	}
	if detailed {
		if e.Placed() {
			parts = append(parts, e.Bounds().String())
		}
		if f, ok := e.(*scene.Frame); ok {
			parts = append(parts, fmt.Sprintf("layers: %d", len(f.Layers())))
		}
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, "pdf")
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}
