package recipe

import (
	"slices"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
)

// Arity tells how many frames a recipe draws into and how they are arranged.
type Arity int

const (
	// SingleFrame recipes draw into one frame.
	SingleFrame Arity = iota
	// FacetedFrames recipes draw into a rows x cols grid of frames.
	FacetedFrames
	// CustomFrames recipes draw into a named set of frames.
	CustomFrames
)

func (a Arity) String() string {
	switch a {
	case FacetedFrames:
		return "faceted"
	case CustomFrames:
		return "custom"
	default:
		return "single"
	}
}

// Trait tells whether a recipe wraps its frames in a new sub-layout.
type Trait int

const (
	// NoSublayout places frames directly at the target cell.
	NoSublayout Trait = iota
	// CreatesSublayout places a new grid holding the frames at the target cell.
	CreatesSublayout
)

func (t Trait) String() string {
	if t == CreatesSublayout {
		return "creates-sublayout"
	}
	return "no-sublayout"
}

// Infrastructure describes what a recipe call created or reused.
// It is immutable; accessors return copies of collections.
type Infrastructure struct {
	arity   Arity
	scene   *scene.Scene
	grid    *scene.Grid
	frame   *scene.Frame
	facets  [][]*scene.Frame
	names   []string
	named   map[string]*scene.Frame
	support scene.Element
}

// Arity returns the tag that says which frame accessor applies.
func (i *Infrastructure) Arity() Arity { return i.arity }

// Scene returns the scene the call drew into.
func (i *Infrastructure) Scene() *scene.Scene { return i.scene }

// Grid returns the sub-layout the call created, or, when it created none,
// the grid holding the frames.
func (i *Infrastructure) Grid() *scene.Grid { return i.grid }

// Frame returns the frame of a SingleFrame call, and the first frame
// otherwise.
func (i *Infrastructure) Frame() *scene.Frame {
	if i.frame != nil {
		return i.frame
	}
	if frames := i.Frames(); len(frames) > 0 {
		return frames[0]
	}
	return nil
}

// Facets returns the rows x cols frames of a FacetedFrames call.
func (i *Infrastructure) Facets() [][]*scene.Frame {
	out := make([][]*scene.Frame, len(i.facets))
	for r, row := range i.facets {
		out[r] = slices.Clone(row)
	}
	return out
}

// Facet returns the frame at (row, col) of a FacetedFrames call.
func (i *Infrastructure) Facet(row, col int) (*scene.Frame, bool) {
	if row < 0 || row >= len(i.facets) || col < 0 || col >= len(i.facets[row]) {
		return nil, false
	}
	return i.facets[row][col], true
}

// Names returns the frame names of a CustomFrames call in creation order.
func (i *Infrastructure) Names() []string { return slices.Clone(i.names) }

// Named returns the frame called name of a CustomFrames call.
func (i *Infrastructure) Named(name string) (*scene.Frame, bool) {
	f, ok := i.named[name]
	return f, ok
}

// Frames returns every frame of the call: row-major for facets, creation
// order for named frames.
func (i *Infrastructure) Frames() []*scene.Frame {
	switch i.arity {
	case FacetedFrames:
		var out []*scene.Frame
		for _, row := range i.facets {
			out = append(out, row...)
		}
		return out
	case CustomFrames:
		out := make([]*scene.Frame, len(i.names))
		for k, n := range i.names {
			out[k] = i.named[n]
		}
		return out
	default:
		if i.frame == nil {
			return nil
		}
		return []*scene.Frame{i.frame}
	}
}

// Support returns the recipe-specific auxiliary element, such as a colorbar,
// or nil.
func (i *Infrastructure) Support() scene.Element { return i.support }
