package box

import "fmt"

// Rect is an axis-aligned bounding box in scene units.
// Y grows downward, matching SVG user space.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center point of the box.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center point of the box.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Size returns the dimensions of the box.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// IsEmpty reports whether the box has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest box containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	return Rect{
		X: x,
		Y: y,
		W: max(r.Right(), o.Right()) - x,
		H: max(r.Bottom(), o.Bottom()) - y,
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f,%.2f %.2fx%.2f]", r.X, r.Y, r.W, r.H)
}

// Size is a width/height pair used for preferred sizes.
type Size struct {
	W, H float64
}

// Along returns the component of s on the given axis.
func (s Size) Along(a Axis) float64 {
	if a == Horizontal {
		return s.W
	}
	return s.H
}

// Axis selects rows (Vertical) or columns (Horizontal).
type Axis int

const (
	// Horizontal is the column axis; extents are x offsets and widths.
	Horizontal Axis = iota
	// Vertical is the row axis; extents are y offsets and heights.
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}
