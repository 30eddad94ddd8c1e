package scene

import (
	"io"
	"weak"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scenegrid/pkg/core/box"
)

// ElementKind enumerates the closed set of placeable elements.
type ElementKind int

const (
	// KindSurface is a plain drawing surface such as a colorbar.
	KindSurface ElementKind = iota
	// KindFrame is a frame holding layers and a legend.
	KindFrame
	// KindText is a text annotation.
	KindText
	// KindGrid is a grid, either a scene root or a sub-layout.
	KindGrid
)

func (k ElementKind) String() string {
	switch k {
	case KindSurface:
		return "surface"
	case KindFrame:
		return "frame"
	case KindText:
		return "text"
	case KindGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// Element is anything that can sit in a grid cell.
//
// The set of implementations is closed: [Surface], [Frame], [TextBlock] and
// [Grid].
type Element interface {
	// ID returns a stable identifier for the element.
	ID() string
	// Kind reports which variant the element is.
	Kind() ElementKind
	// PreferredSize returns the size hint used by Auto tracks.
	PreferredSize() box.Size
	// Place moves the element into r and submits its geometry.
	Place(r box.Rect)
	// Bounds returns the box from the last Place call.
	Bounds() box.Rect
	// Placed reports whether Place has been called since the element was
	// last detached.
	Placed() bool

	base() *node
}

// Backend is the rendering collaborator a scene talks to.
type Backend interface {
	// MeasureContent returns the natural size of an element's content.
	MeasureContent(e Element) box.Size
	// SubmitGeometry is called whenever an element is placed.
	SubmitGeometry(e Element, r box.Rect)
}

// NullBackend measures elements by their intrinsic size and drops geometry.
type NullBackend struct{}

// MeasureContent returns [IntrinsicSize].
func (NullBackend) MeasureContent(e Element) box.Size { return IntrinsicSize(e) }

// SubmitGeometry does nothing.
func (NullBackend) SubmitGeometry(Element, box.Rect) {}

var _ Backend = NullBackend{}

// IntrinsicSize returns the size an element asks for without any backend
// knowledge: the configured size of a surface, the estimated extent of a
// text block and the minimum size of a frame. Grids report zero; use
// [Grid.PreferredSize] for their aggregated size.
func IntrinsicSize(e Element) box.Size {
	switch v := e.(type) {
	case *Surface:
		return v.size
	case *TextBlock:
		return EstimateText(v.Lines(), v.fontSize)
	case *Frame:
		return v.minSize
	default:
		return box.Size{}
	}
}

// node is the state shared by every element.
type node struct {
	id     string
	bounds box.Rect
	placed bool

	// parent is the grid whose cell holds the element.
	parent *Grid
	// scene is set when the element was added to a scene directly.
	scene weak.Pointer[Scene]
}

func newNode() node {
	return node{id: uuid.NewString()}
}

func (n *node) base() *node      { return n }
func (n *node) ID() string       { return n.id }
func (n *node) Bounds() box.Rect { return n.bounds }
func (n *node) Placed() bool     { return n.placed }

// Parent returns the grid holding the element, or nil.
func (n *node) Parent() *Grid { return n.parent }

// owner returns the scene reachable from n, or nil.
func (n *node) owner() *Scene {
	for cur := n; cur != nil; {
		if s := cur.scene.Value(); s != nil {
			return s
		}
		if cur.parent == nil {
			return nil
		}
		cur = &cur.parent.node
	}
	return nil
}

func (n *node) backend() Backend {
	if s := n.owner(); s != nil && s.backend != nil {
		return s.backend
	}
	return NullBackend{}
}

func (n *node) logger() *log.Logger {
	if s := n.owner(); s != nil && s.logger != nil {
		return s.logger
	}
	return discardLogger
}

// place records r and forwards the geometry to the backend.
func (n *node) place(e Element, r box.Rect) {
	n.bounds = r
	n.placed = true
	n.backend().SubmitGeometry(e, r)
}

var discardLogger = log.NewWithOptions(io.Discard, log.Options{})

// Walk visits e and, for grids, every placed descendant in placement order.
// Returning false from fn skips the children of the visited element.
func Walk(e Element, fn func(e Element, depth int) bool) {
	walk(e, 0, fn)
}

func walk(e Element, depth int, fn func(Element, int) bool) {
	if !fn(e, depth) {
		return
	}
	if g, ok := e.(*Grid); ok {
		for _, p := range g.entries {
			walk(p.Content, depth+1, fn)
		}
	}
}
