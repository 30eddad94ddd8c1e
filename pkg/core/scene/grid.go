package scene

import (
	"fmt"
	"slices"
	"time"
	"weak"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
	"github.com/matzehuels/scenegrid/pkg/observability"
)

// Span is the rectangle of tracks a placement covers. Indices are zero-based.
type Span struct {
	Row, Col         int
	RowSpan, ColSpan int
}

// Cell returns the single-cell span at (row, col).
func Cell(row, col int) Span {
	return Span{Row: row, Col: col, RowSpan: 1, ColSpan: 1}
}

// Cells returns a span starting at (row, col) covering rowSpan x colSpan tracks.
func Cells(row, col, rowSpan, colSpan int) Span {
	return Span{Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}
}

// Contains reports whether the cell (row, col) lies inside s.
func (s Span) Contains(row, col int) bool {
	return row >= s.Row && row < s.Row+s.RowSpan &&
		col >= s.Col && col < s.Col+s.ColSpan
}

func (s Span) String() string {
	if s.RowSpan == 1 && s.ColSpan == 1 {
		return fmt.Sprintf("[%d,%d]", s.Row, s.Col)
	}
	return fmt.Sprintf("[%d:%d,%d:%d]", s.Row, s.Row+s.RowSpan, s.Col, s.Col+s.ColSpan)
}

// Placement pairs a span with the element placed there.
type Placement struct {
	Span    Span
	Content Element
}

// Grid is a mutable layout node with ordered row and column tracks.
type Grid struct {
	node
	rows    []box.Policy
	cols    []box.Policy
	entries []*Placement
}

// NewGrid creates a grid with rows x cols tracks that share space equally.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{node: newNode()}
	g.EnsureSize(rows, cols)
	return g
}

// NewGridWithPolicies creates a grid with explicit track policies.
func NewGridWithPolicies(rows, cols []box.Policy) *Grid {
	return &Grid{
		node: newNode(),
		rows: slices.Clone(rows),
		cols: slices.Clone(cols),
	}
}

// Kind returns KindGrid.
func (g *Grid) Kind() ElementKind { return KindGrid }

// NumRows returns the current row count.
func (g *Grid) NumRows() int { return len(g.rows) }

// NumCols returns the current column count.
func (g *Grid) NumCols() int { return len(g.cols) }

// RowPolicies returns a copy of the row track policies.
func (g *Grid) RowPolicies() []box.Policy { return slices.Clone(g.rows) }

// ColPolicies returns a copy of the column track policies.
func (g *Grid) ColPolicies() []box.Policy { return slices.Clone(g.cols) }

// SetRowPolicy changes the sizing policy of row i.
func (g *Grid) SetRowPolicy(i int, p box.Policy) error {
	if i < 0 || i >= len(g.rows) {
		return errors.New(errors.ErrCodeSpanOutOfRange, "row %d outside %d rows", i, len(g.rows))
	}
	g.rows[i] = p
	return nil
}

// SetColPolicy changes the sizing policy of column i.
func (g *Grid) SetColPolicy(i int, p box.Policy) error {
	if i < 0 || i >= len(g.cols) {
		return errors.New(errors.ErrCodeSpanOutOfRange, "column %d outside %d columns", i, len(g.cols))
	}
	g.cols[i] = p
	return nil
}

// EnsureSize appends equally weighted tracks until the grid has at least
// rows x cols tracks. It never removes tracks.
func (g *Grid) EnsureSize(rows, cols int) {
	for len(g.rows) < rows {
		g.rows = append(g.rows, box.Relative(1))
	}
	for len(g.cols) < cols {
		g.cols = append(g.cols, box.Relative(1))
	}
}

// ParentScene returns the scene this grid belongs to, walking up through
// enclosing grids. It returns nil when the grid is detached from any scene.
func (g *Grid) ParentScene() *Scene {
	return g.owner()
}

// SetParentScene binds the grid to s. A grid that is neither nested nor the
// root of s is registered as a top-level element of s, so [Scene.Layout]
// places it and [Scene.Frames] finds its frames. The grid itself only holds
// a weak reference to s. Passing nil clears the binding.
func (g *Grid) SetParentScene(s *Scene) {
	if prev := g.scene.Value(); prev != nil && prev != s {
		prev.Remove(g)
	}
	switch {
	case s == nil:
		g.scene = weak.Pointer[Scene]{}
	case g.parent == nil && s.root != g:
		s.Add(g)
	default:
		g.scene = weak.Make(s)
	}
}

// Set puts content at span, replacing any content at exactly the same span.
// Content at overlapping but different spans stays, so layers of content can
// share a cell.
//
// Set fails with SPAN_OUT_OF_RANGE when the span leaves the grid, and with
// CYCLE_DETECTED when content is g itself or one of its ancestors. On failure
// neither g nor content is modified.
func (g *Grid) Set(content Element, at Span) error {
	return g.attach(content, at, true)
}

// Stack puts content at span without replacing anything.
func (g *Grid) Stack(content Element, at Span) error {
	return g.attach(content, at, false)
}

func (g *Grid) attach(content Element, at Span, overwrite bool) error {
	if content == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot place nil content")
	}
	if err := errors.ValidateSpan(at.Row, at.Col, at.RowSpan, at.ColSpan, len(g.rows), len(g.cols)); err != nil {
		return err
	}
	if child, ok := content.(*Grid); ok {
		if child == g || child.isAncestorOf(g) {
			return errors.New(errors.ErrCodeCycleDetected, "grid %s is %s itself or one of its ancestors", child.id, g.id)
		}
		if s := child.scene.Value(); s != nil && s.root == child {
			return errors.New(errors.ErrCodeInvalidInput, "root grid of scene %s cannot be nested", s.id)
		}
	}

	n := content.base()
	if n.parent != nil {
		n.parent.remove(content)
	}

	if overwrite {
		kept := g.entries[:0]
		for _, p := range g.entries {
			if p.Span == at {
				p.Content.base().detach()
				continue
			}
			kept = append(kept, p)
		}
		clear(g.entries[len(kept):])
		g.entries = kept
	}

	g.entries = append(g.entries, &Placement{Span: at, Content: content})
	n.parent = g
	return nil
}

// isAncestorOf reports whether g encloses other.
func (g *Grid) isAncestorOf(other *Grid) bool {
	for cur := other.parent; cur != nil; cur = cur.parent {
		if cur == g {
			return true
		}
	}
	return false
}

// Detach removes e from the grid. The element itself is kept intact.
func (g *Grid) Detach(e Element) error {
	if e == nil || e.base().parent != g {
		return errors.New(errors.ErrCodeElementNotFound, "element is not placed in grid %s", g.id)
	}
	g.remove(e)
	return nil
}

func (g *Grid) remove(e Element) {
	g.entries = slices.DeleteFunc(g.entries, func(p *Placement) bool {
		return p.Content == e
	})
	e.base().detach()
}

func (n *node) detach() {
	n.parent = nil
	n.placed = false
}

// Contents returns the placements in insertion order.
func (g *Grid) Contents() []Placement {
	out := make([]Placement, len(g.entries))
	for i, p := range g.entries {
		out[i] = *p
	}
	return out
}

// At returns the elements whose span covers (row, col), in insertion order.
func (g *Grid) At(row, col int) []Element {
	var out []Element
	for _, p := range g.entries {
		if p.Span.Contains(row, col) {
			out = append(out, p.Content)
		}
	}
	return out
}

// SpanOf returns the span e occupies in g.
func (g *Grid) SpanOf(e Element) (Span, bool) {
	for _, p := range g.entries {
		if p.Content == e {
			return p.Span, true
		}
	}
	return Span{}, false
}

// NextFreeColumn returns the first column in row not covered by any span.
// ok is false when every column of the row is taken.
func (g *Grid) NextFreeColumn(row int) (col int, ok bool) {
	return g.NextFreeBlock(row, 1, 1)
}

// NextFreeBlock returns the first column c such that the rows x cols block
// starting at (row, c) lies within the grid columns and covers no content.
// Rows below the grid count as free. ok is false when no such block exists;
// col is then NumCols, the first column that appending would create.
func (g *Grid) NextFreeBlock(row, rows, cols int) (col int, ok bool) {
	rows, cols = max(rows, 1), max(cols, 1)
	for c := 0; c+cols <= len(g.cols); c++ {
		if g.blockFree(row, c, rows, cols) {
			return c, true
		}
	}
	return len(g.cols), false
}

func (g *Grid) blockFree(row, col, rows, cols int) bool {
	for r := row; r < min(row+rows, len(g.rows)); r++ {
		for c := col; c < col+cols; c++ {
			if len(g.At(r, c)) > 0 {
				return false
			}
		}
	}
	return true
}

// PreferredSize sums the preferred extent of every track on each axis.
// Fixed tracks contribute their length; Auto and Relative tracks contribute
// the largest preferred size among single-track content.
func (g *Grid) PreferredSize() box.Size {
	var s box.Size
	for i, t := range g.cols {
		s.W += g.trackPreference(box.Horizontal, i, t)
	}
	for i, t := range g.rows {
		s.H += g.trackPreference(box.Vertical, i, t)
	}
	return s
}

func (g *Grid) trackPreference(axis box.Axis, i int, t box.Policy) float64 {
	if t.Kind == box.KindFixed {
		return max(0, t.Value)
	}
	return g.contentExtent(axis, i)
}

// contentExtent returns the largest preferred size along axis among content
// spanning exactly track i.
func (g *Grid) contentExtent(axis box.Axis, i int) float64 {
	var longest float64
	for _, p := range g.entries {
		start, n := p.Span.Col, p.Span.ColSpan
		if axis == box.Vertical {
			start, n = p.Span.Row, p.Span.RowSpan
		}
		if start != i || n != 1 {
			continue
		}
		longest = max(longest, p.Content.PreferredSize().Along(axis))
	}
	return longest
}

func (g *Grid) measured(axis box.Axis) []box.Policy {
	tracks := slices.Clone(g.cols)
	if axis == box.Vertical {
		tracks = slices.Clone(g.rows)
	}
	for i, t := range tracks {
		if t.Kind == box.KindAuto {
			tracks[i] = t.Measured(g.contentExtent(axis, i))
		}
	}
	return tracks
}

// Place resolves the grid into r. It lets a grid act as content of another
// grid.
func (g *Grid) Place(r box.Rect) {
	g.Resolve(r)
}

// Resolve sizes the tracks to fit r and places every content element into
// the union of the tracks its span covers. Nested grids are resolved
// recursively. Calling Resolve twice with the same box and an unchanged tree
// places everything at identical coordinates.
func (g *Grid) Resolve(r box.Rect) {
	start := time.Now()
	g.bounds = r
	g.placed = true

	rowRes := box.Resolve(g.measured(box.Vertical), r.H)
	colRes := box.Resolve(g.measured(box.Horizontal), r.W)
	g.reportOverflow(box.Vertical, rowRes)
	g.reportOverflow(box.Horizontal, colRes)

	g.backend().SubmitGeometry(g, r)

	for _, p := range g.entries {
		y, h := box.Span(rowRes.Extents, p.Span.Row, p.Span.RowSpan)
		x, w := box.Span(colRes.Extents, p.Span.Col, p.Span.ColSpan)
		p.Content.Place(box.Rect{X: r.X + x, Y: r.Y + y, W: w, H: h})
	}

	observability.Layout().OnResolve(g.id, len(g.rows), len(g.cols), len(g.entries), time.Since(start))
}

func (g *Grid) reportOverflow(axis box.Axis, res box.Resolution) {
	if res.Overflow <= 0 {
		return
	}
	g.logger().Debug("layout overflow",
		"grid", g.id,
		"axis", axis,
		"demand", res.Demand,
		"available", res.Available,
	)
	observability.Layout().OnOverflow(g.id, axis.String(), res.Demand, res.Available)
}
