package svg

import (
	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
)

const (
	padding      = 8.0
	titleScale   = 1.25
	swatchWidth  = 18.0
	legendMargin = 6.0
)

// Backend measures content with the SVG font metrics and records the box of
// every element the scene places.
type Backend struct {
	fontSize float64
	rects    map[string]box.Rect
	order    []scene.Element
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithFontSize sets the base font size used for titles and legends.
func WithFontSize(size float64) BackendOption {
	return func(b *Backend) {
		if size > 0 {
			b.fontSize = size
		}
	}
}

// NewBackend returns a backend with an empty geometry record.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		fontSize: scene.DefaultFontSize,
		rects:    make(map[string]box.Rect),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MeasureContent returns the natural size of e. Frames ask for room for
// their title and legend on top of their minimum size.
func (b *Backend) MeasureContent(e scene.Element) box.Size {
	switch v := e.(type) {
	case *scene.Frame:
		s := v.MinSize()
		chrome := b.frameChrome(v)
		return box.Size{W: max(s.W, chrome.W), H: max(s.H, chrome.H)}
	case *scene.TextBlock:
		t := scene.EstimateText(v.Lines(), v.FontSize())
		if t.W == 0 {
			return t
		}
		return box.Size{W: t.W + 2*padding, H: t.H + 2*padding}
	default:
		return scene.IntrinsicSize(e)
	}
}

// frameChrome is the space a frame needs for its title and legend.
func (b *Backend) frameChrome(f *scene.Frame) box.Size {
	var s box.Size
	if f.Title() != "" {
		t := scene.EstimateText([]string{f.Title()}, b.fontSize*titleScale)
		s.W = t.W + 2*padding
		s.H = t.H + padding
	}
	if l := b.legendSize(f); l.W > 0 {
		s.W = max(s.W, l.W+2*padding)
		s.H += l.H + 2*padding
	}
	return s
}

func (b *Backend) legendSize(f *scene.Frame) box.Size {
	lg := f.Legend()
	if !lg.Visible || lg.State() != scene.LegendHasEntries {
		return box.Size{}
	}
	t := scene.EstimateText(lg.Labels(), b.fontSize)
	return box.Size{W: t.W + swatchWidth + 3*legendMargin, H: t.H + 2*legendMargin}
}

// SubmitGeometry records r as the box of e.
func (b *Backend) SubmitGeometry(e scene.Element, r box.Rect) {
	if _, ok := b.rects[e.ID()]; !ok {
		b.order = append(b.order, e)
	}
	b.rects[e.ID()] = r
}

// Geometry returns the last box submitted for e.
func (b *Backend) Geometry(e scene.Element) (box.Rect, bool) {
	r, ok := b.rects[e.ID()]
	return r, ok
}

// Len returns how many distinct elements were placed.
func (b *Backend) Len() int { return len(b.order) }

var _ scene.Backend = (*Backend)(nil)
