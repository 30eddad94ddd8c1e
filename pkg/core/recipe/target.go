package recipe

import (
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Shape is one of the five ways a recipe call can be targeted.
type Shape int

const (
	// ShapeNewScene: nothing supplied.
	ShapeNewScene Shape = iota + 1
	// ShapeScene: a scene without a position.
	ShapeScene
	// ShapeScenePosition: a scene and an explicit grid position.
	ShapeScenePosition
	// ShapeGridPosition: a position in a grid bound to a scene.
	ShapeGridPosition
	// ShapeFrame: an existing frame.
	ShapeFrame
)

func (s Shape) String() string {
	switch s {
	case ShapeNewScene:
		return "new-scene"
	case ShapeScene:
		return "scene"
	case ShapeScenePosition:
		return "scene-position"
	case ShapeGridPosition:
		return "grid-position"
	case ShapeFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// ReturnsInfrastructure reports whether calls of this shape return an
// [Infrastructure]. Frame calls only return a handle.
func (s Shape) ReturnsInfrastructure() bool { return s != ShapeFrame }

// Position is a cell in a grid. Grid may be nil when a scene is supplied,
// meaning the scene's root grid. Zero spans count as one.
type Position struct {
	Grid    *scene.Grid
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// At returns a single-cell position in the scene's root grid.
func At(row, col int) *Position {
	return &Position{Row: row, Col: col}
}

// In returns a single-cell position in g.
func In(g *scene.Grid, row, col int) *Position {
	return &Position{Grid: g, Row: row, Col: col}
}

func (p *Position) span() scene.Span {
	return scene.Cells(p.Row, p.Col, max(1, p.RowSpan), max(1, p.ColSpan))
}

// Target is what the caller supplies to a recipe call. The zero value asks
// for a new scene.
type Target struct {
	Scene    *scene.Scene
	Position *Position
	Frame    *scene.Frame
}

// ResolveShape returns the call shape for t.
//
// It fails with AMBIGUOUS_TARGET when a frame is combined with a scene or a
// position, or when a position names no grid and no scene is given; with
// NO_PARENT_SCENE when the position's grid is not bound to a scene; and with
// FOREIGN_GRID when the position's grid belongs to a different scene than
// the one supplied.
func ResolveShape(t Target) (Shape, error) {
	switch {
	case t.Frame != nil:
		if t.Scene != nil || t.Position != nil {
			return 0, errors.New(errors.ErrCodeAmbiguousTarget, "a frame target cannot be combined with a scene or position")
		}
		return ShapeFrame, nil

	case t.Position != nil && t.Scene != nil:
		if g := t.Position.Grid; g != nil && g.ParentScene() != t.Scene {
			return 0, errors.New(errors.ErrCodeForeignGrid, "grid %s does not belong to scene %s", g.ID(), t.Scene.ID())
		}
		return ShapeScenePosition, nil

	case t.Position != nil:
		g := t.Position.Grid
		if g == nil {
			return 0, errors.New(errors.ErrCodeAmbiguousTarget, "position names no grid and no scene was given")
		}
		if g.ParentScene() == nil {
			return 0, errors.New(errors.ErrCodeNoParentScene, "grid %s has no parent scene", g.ID())
		}
		return ShapeGridPosition, nil

	case t.Scene != nil:
		return ShapeScene, nil

	default:
		return ShapeNewScene, nil
	}
}
