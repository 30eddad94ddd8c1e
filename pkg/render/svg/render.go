package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/render"
)

const defaultStyle = `
    .frame { fill: white; stroke: #333; stroke-width: 1; }
    .grid { fill: none; stroke: #bbb; stroke-dasharray: 4 3; }
    .surface { fill: #eee; stroke: #999; }
    .title { font-family: sans-serif; font-weight: bold; }
    .label { font-family: sans-serif; }
    .legend { fill: white; fill-opacity: 0.85; stroke: #999; }`

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	fontSize   float64
	background string
	gridLines  bool
}

// WithBackground fills the scene with color before anything is drawn.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithGridLines outlines every grid with a dashed border.
func WithGridLines() Option { return func(r *renderer) { r.gridLines = true } }

// WithTextSize sets the base font size for titles and legends.
func WithTextSize(size float64) Option {
	return func(r *renderer) {
		if size > 0 {
			r.fontSize = size
		}
	}
}

// RenderSVG draws the laid-out scene. Elements that were never placed are
// skipped, so callers normally run [scene.Scene.Layout] first.
func RenderSVG(s *scene.Scene, opts ...Option) []byte {
	r := renderer{fontSize: scene.DefaultFontSize}
	for _, opt := range opts {
		opt(&r)
	}

	size := s.Size()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		size.W, size.H, size.W, size.H)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", defaultStyle)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	seen := make(map[string]bool)
	draw := func(e scene.Element, _ int) bool {
		if seen[e.ID()] {
			return false
		}
		seen[e.ID()] = true
		if e.Placed() {
			r.element(&buf, e)
		}
		return true
	}
	s.Walk(draw)
	for _, e := range s.Elements() {
		scene.Walk(e, draw)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// RenderPDF renders the scene as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(s *scene.Scene, opts ...Option) ([]byte, error) {
	return render.ToPDF(RenderSVG(s, opts...))
}

// RenderPNG renders the scene as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(s *scene.Scene, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(RenderSVG(s, opts...), scale)
}

func (r *renderer) element(buf *bytes.Buffer, e scene.Element) {
	switch v := e.(type) {
	case *scene.Grid:
		if r.gridLines {
			rect(buf, "grid", v.ID(), v.Bounds())
		}
	case *scene.Surface:
		rect(buf, "surface", v.ID(), v.Bounds())
	case *scene.TextBlock:
		r.text(buf, v)
	case *scene.Frame:
		r.frame(buf, v)
	}
}

func rect(buf *bytes.Buffer, class, id string, b box.Rect) {
	fmt.Fprintf(buf, `  <rect id="%s" class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		id, class, b.X, b.Y, b.W, b.H)
}

func (r *renderer) text(buf *bytes.Buffer, t *scene.TextBlock) {
	b := t.Bounds()
	lh := t.FontSize() * 1.2
	for i, line := range t.Lines() {
		fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
			b.X+padding, b.Y+padding+float64(i+1)*lh-lh*0.25, t.FontSize(), escapeXML(line))
	}
}

func (r *renderer) frame(buf *bytes.Buffer, f *scene.Frame) {
	b := f.Bounds()
	rect(buf, "frame", f.ID(), b)

	plot := box.Rect{X: b.X + padding, Y: b.Y + padding, W: b.W - 2*padding, H: b.H - 2*padding}
	if f.Title() != "" {
		size := r.fontSize * titleScale
		fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
			b.CenterX(), b.Y+padding+size, size, escapeXML(f.Title()))
		band := size*1.2 + padding
		plot.Y += band
		plot.H -= band
	}
	if plot.IsEmpty() {
		return
	}

	fmt.Fprintf(buf, `  <g class="plot" data-frame="%s">`+"\n", f.ID())
	for _, l := range f.Layers() {
		r.layer(buf, plot, l)
	}
	buf.WriteString("  </g>\n")
	r.legend(buf, plot, f.Legend())
}

func (r *renderer) layer(buf *bytes.Buffer, plot box.Rect, l *scene.Layer) {
	if values, ok := l.Attrs["values"].([][]float64); ok {
		lo, _ := l.Attrs["min"].(float64)
		hi, _ := l.Attrs["max"].(float64)
		heatmap(buf, plot, values, lo, hi)
		return
	}
	xs, _ := l.Attrs["x"].([]float64)
	ys, _ := l.Attrs["y"].([]float64)
	if len(xs) == 0 || len(xs) != len(ys) {
		return
	}
	sx := scaler(xs, plot.X, plot.Right())
	sy := scaler(ys, plot.Bottom(), plot.Y)
	color := l.Key.Color
	if color == "" {
		color = "black"
	}

	if l.Key.Line != "" {
		points := make([]string, len(xs))
		for i := range xs {
			points[i] = fmt.Sprintf("%.1f,%.1f", sx(xs[i]), sy(ys[i]))
		}
		fmt.Fprintf(buf, `    <polyline id="%s" fill="none" stroke="%s" stroke-width="1.5"%s points="%s"/>`+"\n",
			l.ID, escapeXML(color), dash(l.Key.Line), strings.Join(points, " "))
	}
	if l.Key.Marker != "" {
		for i := range xs {
			fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", sx(xs[i]), sy(ys[i]), escapeXML(color))
		}
	}
}

func dash(line string) string {
	switch line {
	case "--":
		return ` stroke-dasharray="6 3"`
	case ":":
		return ` stroke-dasharray="2 2"`
	default:
		return ""
	}
}

// scaler maps the range of data onto [from, to].
func scaler(data []float64, from, to float64) func(float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-0.5, hi+0.5
	}
	return func(v float64) float64 {
		return from + (v-lo)/(hi-lo)*(to-from)
	}
}

func heatmap(buf *bytes.Buffer, plot box.Rect, values [][]float64, lo, hi float64) {
	rows := len(values)
	if rows == 0 || len(values[0]) == 0 {
		return
	}
	cols := len(values[0])
	cw, ch := plot.W/float64(cols), plot.H/float64(rows)
	for i, row := range values {
		for j, v := range row {
			t := 0.5
			if hi > lo {
				t = (v - lo) / (hi - lo)
			}
			fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				plot.X+float64(j)*cw, plot.Y+float64(i)*ch, cw, ch, ramp(t))
		}
	}
}

// viridis control points, sampled at even steps.
var viridis = [][3]float64{
	{68, 1, 84}, {59, 82, 139}, {33, 145, 140}, {94, 201, 98}, {253, 231, 37},
}

func ramp(t float64) string {
	t = min(1, max(0, t))
	pos := t * float64(len(viridis)-1)
	i := min(int(pos), len(viridis)-2)
	f := pos - float64(i)
	a, b := viridis[i], viridis[i+1]
	return fmt.Sprintf("#%02x%02x%02x",
		int(a[0]+(b[0]-a[0])*f), int(a[1]+(b[1]-a[1])*f), int(a[2]+(b[2]-a[2])*f))
}

func (r *renderer) legend(buf *bytes.Buffer, plot box.Rect, lg *scene.Legend) {
	if !lg.Visible || lg.State() != scene.LegendHasEntries {
		return
	}
	entries := lg.Entries()
	labels := lg.Labels()
	t := scene.EstimateText(labels, r.fontSize)
	w := t.W + swatchWidth + 3*legendMargin
	h := t.H + 2*legendMargin
	x, y := plot.Right()-w-legendMargin, plot.Y+legendMargin

	fmt.Fprintf(buf, `  <g class="legend-box">`+"\n")
	fmt.Fprintf(buf, `    <rect class="legend" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n", x, y, w, h)
	lh := r.fontSize * 1.2
	for i, e := range entries {
		cy := y + legendMargin + float64(i)*lh + lh/2
		color := e.Key.Color
		if color == "" {
			color = "black"
		}
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`+"\n",
			x+legendMargin, cy, x+legendMargin+swatchWidth, cy, escapeXML(color))
		fmt.Fprintf(buf, `    <text class="label" x="%.1f" y="%.1f" font-size="%.1f" dominant-baseline="middle">%s</text>`+"\n",
			x+2*legendMargin+swatchWidth, cy, r.fontSize, escapeXML(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
