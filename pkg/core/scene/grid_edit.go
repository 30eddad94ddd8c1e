package scene

import (
	"slices"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// InsertRow inserts a row with policy p before index at (0..NumRows).
// Spans starting at or after at move down by one; spans crossing at grow by
// one; spans entirely above at are untouched.
func (g *Grid) InsertRow(at int, p box.Policy) error {
	return g.insertTrack(box.Vertical, at, p)
}

// InsertCol inserts a column with policy p before index at (0..NumCols).
func (g *Grid) InsertCol(at int, p box.Policy) error {
	return g.insertTrack(box.Horizontal, at, p)
}

// DeleteRow removes row at. Content spanning only that row makes the call
// fail with TRACK_NOT_EMPTY unless force is set, in which case that content
// is detached. Spans crossing the row shrink by one.
func (g *Grid) DeleteRow(at int, force bool) error {
	return g.deleteTrack(box.Vertical, at, force)
}

// DeleteCol removes column at, following the same rules as [Grid.DeleteRow].
func (g *Grid) DeleteCol(at int, force bool) error {
	return g.deleteTrack(box.Horizontal, at, force)
}

func (g *Grid) tracks(axis box.Axis) *[]box.Policy {
	if axis == box.Vertical {
		return &g.rows
	}
	return &g.cols
}

// axisSpan returns pointers to the start and length of s along axis.
func axisSpan(s *Span, axis box.Axis) (start, n *int) {
	if axis == box.Vertical {
		return &s.Row, &s.RowSpan
	}
	return &s.Col, &s.ColSpan
}

func trackName(axis box.Axis) string {
	if axis == box.Vertical {
		return "row"
	}
	return "column"
}

func (g *Grid) insertTrack(axis box.Axis, at int, p box.Policy) error {
	tracks := g.tracks(axis)
	if at < 0 || at > len(*tracks) {
		return errors.New(errors.ErrCodeSpanOutOfRange, "cannot insert %s at %d in %d tracks", trackName(axis), at, len(*tracks))
	}

	*tracks = slices.Insert(*tracks, at, p)
	for _, e := range g.entries {
		start, n := axisSpan(&e.Span, axis)
		switch {
		case *start >= at:
			*start++
		case *start+*n > at:
			*n++
		}
	}
	return nil
}

func (g *Grid) deleteTrack(axis box.Axis, at int, force bool) error {
	tracks := g.tracks(axis)
	if at < 0 || at >= len(*tracks) {
		return errors.New(errors.ErrCodeSpanOutOfRange, "cannot delete %s %d of %d", trackName(axis), at, len(*tracks))
	}
	if len(*tracks) == 1 {
		return errors.New(errors.ErrCodeSpanOutOfRange, "cannot delete the only %s", trackName(axis))
	}

	var occupants []Element
	for _, e := range g.entries {
		start, n := axisSpan(&e.Span, axis)
		if *start == at && *n == 1 {
			occupants = append(occupants, e.Content)
		}
	}
	if len(occupants) > 0 && !force {
		return errors.New(errors.ErrCodeTrackNotEmpty, "%s %d holds %d element(s)", trackName(axis), at, len(occupants))
	}
	for _, e := range occupants {
		g.remove(e)
	}

	*tracks = slices.Delete(*tracks, at, at+1)
	for _, e := range g.entries {
		start, n := axisSpan(&e.Span, axis)
		switch {
		case *start > at:
			*start--
		case *start+*n > at:
			*n--
		}
	}
	if len(occupants) > 0 {
		g.logger().Debug("detached content from deleted track",
			"grid", g.id,
			"track", trackName(axis),
			"index", at,
			"count", len(occupants),
		)
	}
	return nil
}
