package scene

import (
	"slices"
	"weak"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Scene is the top-level drawing surface.
//
// A scene owns at most one root grid, set once, and any number of top-level
// elements that may or may not be laid out.
type Scene struct {
	id       string
	size     box.Size
	root     *Grid
	elements []Element
	backend  Backend
	logger   *log.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithBackend sets the rendering backend used to measure content and
// receive geometry. The default is [NullBackend].
func WithBackend(b Backend) Option {
	return func(s *Scene) { s.backend = b }
}

// WithLogger sets the logger for layout diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) { s.logger = l }
}

// WithID overrides the generated scene identifier.
func WithID(id string) Option {
	return func(s *Scene) { s.id = id }
}

// New creates an empty scene of the given size.
func New(width, height float64, opts ...Option) (*Scene, error) {
	if err := errors.ValidateSize(width, height); err != nil {
		return nil, err
	}
	s := &Scene{
		id:      uuid.NewString(),
		size:    box.Size{W: width, H: height},
		backend: NullBackend{},
		logger:  discardLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = NullBackend{}
	}
	if s.logger == nil {
		s.logger = discardLogger
	}
	return s, nil
}

// ID returns the scene identifier.
func (s *Scene) ID() string { return s.id }

// Size returns the scene dimensions.
func (s *Scene) Size() box.Size { return s.size }

// Bounds returns the full scene box anchored at the origin.
func (s *Scene) Bounds() box.Rect { return box.Rect{W: s.size.W, H: s.size.H} }

// Backend returns the rendering backend of the scene.
func (s *Scene) Backend() Backend { return s.backend }

// Logger returns the scene logger.
func (s *Scene) Logger() *log.Logger { return s.logger }

// Resize changes the scene dimensions. Call [Scene.Layout] afterwards to
// reflow content.
func (s *Scene) Resize(width, height float64) error {
	if err := errors.ValidateSize(width, height); err != nil {
		return err
	}
	s.size = box.Size{W: width, H: height}
	return nil
}

// Root returns the root grid, or nil when none has been set.
func (s *Scene) Root() *Grid { return s.root }

// SetRoot installs g as the root grid. The root can be set only once.
// A grid that already sits in another grid's cell cannot become a root.
func (s *Scene) SetRoot(g *Grid) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "root grid is nil")
	}
	if s.root != nil {
		return errors.New(errors.ErrCodeRootAlreadySet, "scene %s already has root grid %s", s.id, s.root.id)
	}
	if g.parent != nil {
		return errors.New(errors.ErrCodeInvalidInput, "grid %s is nested in grid %s", g.id, g.parent.id)
	}
	if other := g.scene.Value(); other != nil && other != s && other.root == g {
		return errors.New(errors.ErrCodeRootAlreadySet, "grid %s is the root of scene %s", g.id, other.id)
	}
	s.elements = slices.DeleteFunc(s.elements, func(e Element) bool { return e == Element(g) })
	s.root = g
	g.scene = weak.Make(s)
	s.logger.Debug("root grid set", "scene", s.id, "grid", g.id, "rows", g.NumRows(), "cols", g.NumCols())
	return nil
}

// EnsureRoot returns the root grid, creating a rows x cols grid when the
// scene has none.
func (s *Scene) EnsureRoot(rows, cols int) *Grid {
	if s.root == nil {
		// SetRoot cannot fail on a fresh grid and an empty root slot.
		_ = s.SetRoot(NewGrid(rows, cols))
	}
	return s.root
}

// Add registers e as a top-level element of the scene. Elements added this
// way need not be placed in the layout.
func (s *Scene) Add(e Element) {
	if e == nil || slices.Contains(s.elements, e) {
		return
	}
	e.base().scene = weak.Make(s)
	s.elements = append(s.elements, e)
}

// Remove drops e from the top-level elements. It does not detach e from any
// grid.
func (s *Scene) Remove(e Element) bool {
	i := slices.Index(s.elements, e)
	if i < 0 {
		return false
	}
	s.elements = slices.Delete(s.elements, i, i+1)
	if e.base().scene.Value() == s && e != Element(s.root) {
		e.base().scene = weak.Pointer[Scene]{}
	}
	return true
}

// Elements returns the top-level elements in insertion order.
func (s *Scene) Elements() []Element { return slices.Clone(s.elements) }

// Frames returns every frame reachable from the scene: registered top-level
// frames first, then frames in the layout tree, without duplicates.
func (s *Scene) Frames() []*Frame {
	var out []*Frame
	seen := make(map[*Frame]bool)
	collect := func(e Element, _ int) bool {
		if f, ok := e.(*Frame); ok && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
		return true
	}
	for _, e := range s.elements {
		Walk(e, collect)
	}
	if s.root != nil {
		Walk(s.root, collect)
	}
	return out
}

// Walk visits the root grid and its descendants.
func (s *Scene) Walk(fn func(e Element, depth int) bool) {
	if s.root != nil {
		Walk(s.root, fn)
	}
}

// Layout resolves the root grid into the scene bounds. Top-level grids that
// sit outside the root tree are resolved into the scene bounds too, on top
// of the root. Other top-level elements stay as they are.
func (s *Scene) Layout() {
	if s.root != nil {
		s.root.Resolve(s.Bounds())
	}
	for _, e := range s.elements {
		if g, ok := e.(*Grid); ok && g != s.root && g.parent == nil {
			g.Resolve(s.Bounds())
		}
	}
}
