package scene

import (
	"testing"
	"time"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
	"github.com/matzehuels/scenegrid/pkg/observability"
)

func TestGridSet(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		g := NewGrid(2, 2)
		tests := []Span{
			Cell(2, 0),
			Cell(0, 2),
			Cell(-1, 0),
			Cells(1, 1, 2, 1),
			Cells(0, 0, 0, 1),
		}
		for _, at := range tests {
			err := g.Set(NewFrame(), at)
			if !errors.Is(err, errors.ErrCodeSpanOutOfRange) {
				t.Errorf("Set(%v) error = %v, want SPAN_OUT_OF_RANGE", at, err)
			}
		}
		if n := len(g.Contents()); n != 0 {
			t.Errorf("grid has %d placements after failed sets", n)
		}
	})

	t.Run("exact span overwrites", func(t *testing.T) {
		g := NewGrid(1, 1)
		a, b := NewFrame(), NewFrame()
		mustSet(t, g, a, Cell(0, 0))
		mustSet(t, g, b, Cell(0, 0))

		if got := g.At(0, 0); len(got) != 1 || got[0] != b {
			t.Fatalf("At(0,0) = %v, want only b", got)
		}
		if a.Parent() != nil {
			t.Error("overwritten frame should be detached")
		}
	})

	t.Run("overlapping spans coexist", func(t *testing.T) {
		g := NewGrid(2, 2)
		a, b := NewFrame(), NewText("note", 0)
		mustSet(t, g, a, Cells(0, 0, 2, 2))
		mustSet(t, g, b, Cell(0, 0))

		if got := g.At(0, 0); len(got) != 2 {
			t.Fatalf("At(0,0) has %d elements, want 2", len(got))
		}
	})

	t.Run("stack keeps exact span", func(t *testing.T) {
		g := NewGrid(1, 1)
		a, b := NewFrame(), NewFrame()
		mustSet(t, g, a, Cell(0, 0))
		if err := g.Stack(b, Cell(0, 0)); err != nil {
			t.Fatalf("Stack() error = %v", err)
		}
		if got := g.At(0, 0); len(got) != 2 || got[0] != a || got[1] != b {
			t.Fatalf("At(0,0) = %v, want [a b]", got)
		}
	})

	t.Run("nil content", func(t *testing.T) {
		g := NewGrid(1, 1)
		if err := g.Set(nil, Cell(0, 0)); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Set(nil) error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestGridCycleDetected(t *testing.T) {
	outer := NewGrid(1, 1)
	inner := NewGrid(1, 1)
	innermost := NewGrid(1, 1)
	mustSet(t, outer, inner, Cell(0, 0))
	mustSet(t, inner, innermost, Cell(0, 0))

	tests := []struct {
		name   string
		target *Grid
		child  *Grid
	}{
		{"self", outer, outer},
		{"parent into child", inner, outer},
		{"ancestor into leaf", innermost, outer},
		{"direct parent into leaf", innermost, inner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.target.Contents())
			err := tt.target.Set(tt.child, Cell(0, 0))
			if !errors.Is(err, errors.ErrCodeCycleDetected) {
				t.Fatalf("Set() error = %v, want CYCLE_DETECTED", err)
			}
			if got := len(tt.target.Contents()); got != before {
				t.Errorf("target has %d placements, want %d", got, before)
			}
		})
	}

	if inner.Parent() != outer || innermost.Parent() != inner {
		t.Error("failed inserts must leave the tree unmodified")
	}
	if outer.Parent() != nil {
		t.Error("outer grid must stay a root")
	}
}

func TestGridReparent(t *testing.T) {
	a := NewGrid(1, 2)
	b := NewGrid(1, 1)
	sub := NewGrid(1, 1)
	f := NewFrame()

	mustSet(t, a, sub, Cell(0, 0))
	mustSet(t, a, f, Cell(0, 1))
	mustSet(t, b, sub, Cell(0, 0))

	if sub.Parent() != b {
		t.Errorf("sub parent = %v, want b", sub.Parent())
	}
	if _, ok := a.SpanOf(sub); ok {
		t.Error("sub should no longer be placed in a")
	}
	if len(a.Contents()) != 1 {
		t.Errorf("a has %d placements, want 1", len(a.Contents()))
	}

	// moving within the same grid keeps a single placement
	mustSet(t, b, sub, Cell(0, 0))
	if len(b.Contents()) != 1 {
		t.Errorf("b has %d placements, want 1", len(b.Contents()))
	}

	if err := a.Detach(sub); !errors.Is(err, errors.ErrCodeElementNotFound) {
		t.Errorf("Detach() of foreign element error = %v, want ELEMENT_NOT_FOUND", err)
	}
	if err := b.Detach(sub); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}
	if sub.Parent() != nil {
		t.Error("detached grid should have no parent")
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	for _, axis := range []box.Axis{box.Vertical, box.Horizontal} {
		for k := 0; k <= 3; k++ {
			g := NewGrid(3, 3)
			elems := []Element{NewFrame(), NewFrame(), NewFrame(), NewGrid(1, 1)}
			spans := []Span{Cell(0, 0), Cells(0, 1, 2, 2), Cell(2, 2), Cells(1, 0, 2, 1)}
			for i, e := range elems {
				mustSet(t, g, e, spans[i])
			}

			insert, remove := g.InsertRow, g.DeleteRow
			if axis == box.Horizontal {
				insert, remove = g.InsertCol, g.DeleteCol
			}
			if err := insert(k, box.Fixed(10)); err != nil {
				t.Fatalf("%v insert(%d) error = %v", axis, k, err)
			}
			if err := remove(k, false); err != nil {
				t.Fatalf("%v delete(%d) error = %v", axis, k, err)
			}

			for i, e := range elems {
				got, ok := g.SpanOf(e)
				if !ok || got != spans[i] {
					t.Errorf("%v k=%d: span of element %d = %v, want %v", axis, k, i, got, spans[i])
				}
			}
			if g.NumRows() != 3 || g.NumCols() != 3 {
				t.Errorf("%v k=%d: grid is %dx%d, want 3x3", axis, k, g.NumRows(), g.NumCols())
			}
		}
	}
}

func TestInsertRowShiftsSpans(t *testing.T) {
	g := NewGrid(3, 1)
	above, straddle, below := NewFrame(), NewFrame(), NewFrame()
	mustSet(t, g, above, Cell(0, 0))
	mustSet(t, g, straddle, Cells(0, 0, 2, 1))
	mustSet(t, g, below, Cell(2, 0))

	if err := g.InsertRow(1, box.Relative(1)); err != nil {
		t.Fatalf("InsertRow() error = %v", err)
	}

	tests := []struct {
		name string
		e    Element
		want Span
	}{
		{"near side untouched", above, Cell(0, 0)},
		{"straddling span grows", straddle, Cells(0, 0, 3, 1)},
		{"far side shifts", below, Cell(3, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := g.SpanOf(tt.e); got != tt.want {
				t.Errorf("span = %v, want %v", got, tt.want)
			}
		})
	}

	if err := g.InsertRow(5, box.Auto()); !errors.Is(err, errors.ErrCodeSpanOutOfRange) {
		t.Errorf("InsertRow(5) error = %v, want SPAN_OUT_OF_RANGE", err)
	}
}

func TestDeleteTrackNotEmpty(t *testing.T) {
	g := NewGrid(2, 2)
	f := NewFrame()
	wide := NewFrame()
	mustSet(t, g, f, Cell(1, 0))
	mustSet(t, g, wide, Cells(0, 1, 2, 1))

	if err := g.DeleteRow(1, false); !errors.Is(err, errors.ErrCodeTrackNotEmpty) {
		t.Fatalf("DeleteRow() error = %v, want TRACK_NOT_EMPTY", err)
	}
	if g.NumRows() != 2 || f.Parent() != g {
		t.Fatal("failed delete must leave the grid unmodified")
	}

	if err := g.DeleteRow(1, true); err != nil {
		t.Fatalf("DeleteRow(force) error = %v", err)
	}
	if f.Parent() != nil {
		t.Error("forced delete should detach the occupant")
	}
	if got, _ := g.SpanOf(wide); got != Cell(0, 1) {
		t.Errorf("crossing span = %v, want %v", got, Cell(0, 1))
	}
	if g.NumRows() != 1 {
		t.Errorf("NumRows() = %d, want 1", g.NumRows())
	}

	if err := g.DeleteRow(0, true); !errors.Is(err, errors.ErrCodeSpanOutOfRange) {
		t.Errorf("deleting the only row error = %v, want SPAN_OUT_OF_RANGE", err)
	}
	if err := g.DeleteCol(2, false); !errors.Is(err, errors.ErrCodeSpanOutOfRange) {
		t.Errorf("DeleteCol(2) error = %v, want SPAN_OUT_OF_RANGE", err)
	}
}

func TestGridResolve(t *testing.T) {
	g := NewGridWithPolicies(
		[]box.Policy{box.Fixed(100), box.Relative(1)},
		[]box.Policy{box.Relative(1), box.Relative(3)},
	)
	header, body, nested := NewText("title", 0), NewFrame(), NewGrid(1, 2)
	left, right := NewFrame(), NewFrame()
	mustSet(t, g, header, Cell(0, 1))
	mustSet(t, g, body, Cells(1, 0, 1, 2))
	mustSet(t, g, nested, Cell(0, 0))
	mustSet(t, nested, left, Cell(0, 0))
	mustSet(t, nested, right, Cell(0, 1))

	g.Resolve(box.Rect{X: 10, Y: 20, W: 800, H: 600})

	tests := []struct {
		name string
		e    Element
		want box.Rect
	}{
		{"grid", g, box.Rect{X: 10, Y: 20, W: 800, H: 600}},
		{"header", header, box.Rect{X: 210, Y: 20, W: 600, H: 100}},
		{"spanning body", body, box.Rect{X: 10, Y: 120, W: 800, H: 500}},
		{"nested grid", nested, box.Rect{X: 10, Y: 20, W: 200, H: 100}},
		{"nested left", left, box.Rect{X: 10, Y: 20, W: 100, H: 100}},
		{"nested right", right, box.Rect{X: 110, Y: 20, W: 100, H: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.e.Placed() {
				t.Fatal("element not placed")
			}
			if got := tt.e.Bounds(); got != tt.want {
				t.Errorf("Bounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridResolveIdempotent(t *testing.T) {
	g := NewGridWithPolicies(
		[]box.Policy{box.Auto(), box.Relative(2), box.Fixed(33.3)},
		[]box.Policy{box.Relative(1), box.Auto(), box.Relative(0.7)},
	)
	var elems []Element
	add := func(e Element, at Span) {
		mustSet(t, g, e, at)
		elems = append(elems, e)
	}
	add(NewSurface("bar", 17, 41), Cell(0, 1))
	add(NewText("a\nlonger line", 11), Cell(2, 1))
	add(NewFrame(WithMinSize(50, 60)), Cells(0, 0, 2, 1))
	sub := NewGrid(2, 2)
	add(sub, Cells(1, 1, 2, 2))
	inner := NewFrame()
	mustSet(t, sub, inner, Cell(1, 1))
	elems = append(elems, inner)

	r := box.Rect{W: 733.7, H: 419.1}
	g.Resolve(r)
	first := make([]box.Rect, len(elems))
	for i, e := range elems {
		first[i] = e.Bounds()
	}

	g.Resolve(r)
	for i, e := range elems {
		if got := e.Bounds(); got != first[i] {
			t.Errorf("element %d: second resolve %v, first %v", i, got, first[i])
		}
	}
}

func TestGridAutoTracks(t *testing.T) {
	g := NewGridWithPolicies(
		[]box.Policy{box.Relative(1)},
		[]box.Policy{box.Auto(), box.Relative(1)},
	)
	bar := NewSurface("colorbar", 120, 40)
	f := NewFrame()
	mustSet(t, g, bar, Cell(0, 0))
	mustSet(t, g, f, Cell(0, 1))

	g.Resolve(box.Rect{W: 800, H: 600})

	if got := bar.Bounds(); got != (box.Rect{W: 120, H: 600}) {
		t.Errorf("auto column bounds = %v", got)
	}
	if got := f.Bounds(); got != (box.Rect{X: 120, W: 680, H: 600}) {
		t.Errorf("relative column bounds = %v", got)
	}

	pref := g.PreferredSize()
	if pref.W != 120 || pref.H != 40 {
		t.Errorf("PreferredSize() = %+v, want 120x40", pref)
	}
}

func TestGridOverflowHook(t *testing.T) {
	rec := &recordingLayoutHooks{}
	observability.SetLayoutHooks(rec)
	t.Cleanup(observability.Reset)

	g := NewGridWithPolicies(
		[]box.Policy{box.Relative(1)},
		[]box.Policy{box.Fixed(500), box.Fixed(500)},
	)
	g.Resolve(box.Rect{W: 800, H: 600})

	if len(rec.overflows) != 1 {
		t.Fatalf("got %d overflow events, want 1", len(rec.overflows))
	}
	o := rec.overflows[0]
	if o.axis != "horizontal" || o.demand != 1000 || o.available != 800 {
		t.Errorf("overflow = %+v", o)
	}
	if rec.resolves != 1 {
		t.Errorf("got %d resolve events, want 1", rec.resolves)
	}
}

func TestNextFreeColumn(t *testing.T) {
	g := NewGrid(2, 3)
	mustSet(t, g, NewFrame(), Cell(0, 0))
	mustSet(t, g, NewFrame(), Cells(0, 1, 2, 1))

	if col, ok := g.NextFreeColumn(0); !ok || col != 2 {
		t.Errorf("NextFreeColumn(0) = %d, %v; want 2, true", col, ok)
	}
	mustSet(t, g, NewFrame(), Cell(0, 2))
	if col, ok := g.NextFreeColumn(0); ok || col != 3 {
		t.Errorf("NextFreeColumn(0) = %d, %v; want 3, false", col, ok)
	}
}

type overflowEvent struct {
	axis              string
	demand, available float64
}

type recordingLayoutHooks struct {
	observability.NoopLayoutHooks
	resolves  int
	overflows []overflowEvent
}

func (r *recordingLayoutHooks) OnResolve(string, int, int, int, time.Duration) { r.resolves++ }

func (r *recordingLayoutHooks) OnOverflow(_ string, axis string, demand, available float64) {
	r.overflows = append(r.overflows, overflowEvent{axis, demand, available})
}

func mustSet(t *testing.T, g *Grid, e Element, at Span) {
	t.Helper()
	if err := g.Set(e, at); err != nil {
		t.Fatalf("Set(%v) error = %v", at, err)
	}
}
