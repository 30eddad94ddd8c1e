package recipe

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// DrawInput is what a recipe's drawing logic receives for one frame.
type DrawInput struct {
	// Frame is the frame being drawn into. Drawing logic may read it but must
	// not modify it; the returned layer is attached by the dispatcher.
	Frame *scene.Frame
	// Index is the position of the frame among all frames of the call.
	Index int
	// Row and Col locate a facet; both are zero for other arities.
	Row, Col int
	// Name is the frame name of a CustomFrames call.
	Name string
	// Params are the partitioned call parameters.
	Params Params
}

// DrawFunc produces the layer one call contributes to one frame.
// It may run on a worker goroutine and should return promptly once ctx is
// done.
type DrawFunc func(ctx context.Context, in DrawInput) (*scene.Layer, error)

// Recipe is a named drawing operation.
type Recipe struct {
	Name        string
	Description string
	Arity       Arity
	Trait       Trait

	// Draw is the drawing logic. It is required.
	Draw DrawFunc

	// Facets returns the facet grid size of a FacetedFrames recipe. When nil,
	// the frame parameters "rows" and "cols" are used (default 1x1).
	Facets func(p Params) (rows, cols int, err error)

	// Names returns the frame names of a CustomFrames recipe. When nil, the
	// frame parameter "names" is used.
	Names func(p Params) ([]string, error)

	// Support builds an auxiliary element (such as a colorbar) for calls that
	// create new frames. With CreatesSublayout the element is placed in an
	// Auto column next to the frames; otherwise it is only registered with the
	// scene.
	Support func(p Params) (scene.Element, error)
}

// Validate checks that r can be registered.
func (r *Recipe) Validate() error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "recipe is nil")
	}
	if err := errors.ValidateRecipeName(r.Name); err != nil {
		return err
	}
	if r.Draw == nil {
		return errors.New(errors.ErrCodeInvalidInput, "recipe %q has no drawing logic", r.Name)
	}
	return nil
}

func (r *Recipe) facets(p Params) (rows, cols int, err error) {
	if r.Facets != nil {
		rows, cols, err = r.Facets(p)
	} else {
		if rows, err = p.Frame.Int("rows", 1); err != nil {
			return 0, 0, err
		}
		cols, err = p.Frame.Int("cols", 1)
	}
	if err != nil {
		return 0, 0, err
	}
	if rows < 1 || cols < 1 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "recipe %q needs at least one facet, got %dx%d", r.Name, rows, cols)
	}
	return rows, cols, nil
}

func (r *Recipe) names(p Params) ([]string, error) {
	var (
		names []string
		err   error
	)
	if r.Names != nil {
		names, err = r.Names(p)
	} else {
		names, err = p.Frame.Strings("names")
	}
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "recipe %q needs at least one frame name", r.Name)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "recipe %q: frame names must be unique and non-empty", r.Name)
		}
		seen[n] = true
	}
	return names, nil
}

// Registry maps recipe names to recipes. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	recipes map[string]*Recipe
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{recipes: make(map[string]*Recipe)}
}

// Register adds r. Registering a name twice replaces the earlier recipe.
func (reg *Registry) Register(r *Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.recipes[r.Name] = r
	return nil
}

// MustRegister is like Register but panics on an invalid recipe.
func (reg *Registry) MustRegister(r *Recipe) {
	if err := reg.Register(r); err != nil {
		panic(err)
	}
}

// Get returns the recipe called name.
func (reg *Registry) Get(name string) (*Recipe, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.recipes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownRecipe, "unknown recipe %q (available: %v)", name, reg.namesLocked())
	}
	return r, nil
}

// Names returns the registered names in sorted order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.namesLocked()
}

// List returns the registered recipes sorted by name.
func (reg *Registry) List() []*Recipe {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Recipe, 0, len(reg.recipes))
	for _, r := range reg.recipes {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *Recipe) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func (reg *Registry) namesLocked() []string {
	names := make([]string, 0, len(reg.recipes))
	for n := range reg.recipes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
