package recipe

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
	"github.com/matzehuels/scenegrid/pkg/observability"
)

const (
	// DefaultWidth is the width of scenes created by ShapeNewScene calls.
	DefaultWidth = 800.0
	// DefaultHeight is the height of scenes created by ShapeNewScene calls.
	DefaultHeight = 600.0
)

// Dispatcher runs recipes against targets.
//
// A Dispatcher holds no scene state and may be shared, but scenes themselves
// are not safe for concurrent use: calls touching the same scene must not
// overlap.
type Dispatcher struct {
	registry *Registry
	logger   *log.Logger
	backend  scene.Backend
	width    float64
	height   float64
	workers  int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatch logger. New scenes inherit it.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithBackend sets the rendering backend of scenes the dispatcher creates.
func WithBackend(b scene.Backend) Option {
	return func(d *Dispatcher) { d.backend = b }
}

// WithSceneSize sets the default size of scenes the dispatcher creates.
// The scene parameters "width" and "height" override it per call.
func WithSceneSize(w, h float64) Option {
	return func(d *Dispatcher) { d.width, d.height = w, h }
}

// WithWorkers limits how many drawing functions of one call run at once.
// Zero or less means no limit.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) { d.workers = n }
}

// NewDispatcher returns a dispatcher over reg. A nil registry means the
// built-in recipes.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	if reg == nil {
		reg = Builtins()
	}
	d := &Dispatcher{
		registry: reg,
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if d.backend == nil {
		d.backend = scene.NullBackend{}
	}
	return d
}

// Registry returns the recipes the dispatcher knows.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// SceneSize returns the default size of scenes the dispatcher creates.
func (d *Dispatcher) SceneSize() (w, h float64) { return d.width, d.height }

// Result is the outcome of a recipe call.
type Result struct {
	Shape Shape
	// Infra is nil for ShapeFrame calls.
	Infra  *Infrastructure
	Handle *Handle
}

// Prediction describes what a call would return, without running it.
type Prediction struct {
	Recipe string
	Shape  Shape
	Arity  Arity
	Trait  Trait
	// Infrastructure is false when the call only returns a handle.
	Infrastructure bool
	// Sublayout reports whether the call would create a nested grid.
	Sublayout bool
}

// Predict resolves the recipe and call shape for t without touching any
// scene.
func (d *Dispatcher) Predict(name string, t Target) (Prediction, error) {
	r, err := d.registry.Get(name)
	if err != nil {
		return Prediction{}, err
	}
	shape, err := ResolveShape(t)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		Recipe:         r.Name,
		Shape:          shape,
		Arity:          r.Arity,
		Trait:          r.Trait,
		Infrastructure: shape.ReturnsInfrastructure(),
		Sublayout:      shape.ReturnsInfrastructure() && r.Trait == CreatesSublayout,
	}, nil
}

// Run looks up the recipe called name and runs it. See [Dispatcher.RunRecipe].
func (d *Dispatcher) Run(ctx context.Context, name string, t Target, p Params) (*Result, error) {
	r, err := d.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return d.RunRecipe(ctx, r, t, p)
}

// RunRecipe runs r against t.
//
// The scene, grid and frames the call needs are created or looked up first,
// then the drawing logic runs for every frame. Only when all of it succeeded
// are new content and layers attached and the scene laid out again. A failed
// or cancelled call leaves every existing scene, grid and frame as it was.
func (d *Dispatcher) RunRecipe(ctx context.Context, r *Recipe, t Target, p Params) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	shape, err := ResolveShape(t)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("dispatch",
		"recipe", r.Name,
		"shape", shape,
		"arity", r.Arity,
		"trait", r.Trait,
	)
	observability.Dispatch().OnDispatch(ctx, r.Name, shape.String())

	if shape == ShapeFrame {
		slots := []slot{{frame: t.Frame}}
		layers, err := d.draw(ctx, r, slots, p)
		if err != nil {
			return nil, err
		}
		if err := t.Frame.AddLayer(layers[0]); err != nil {
			return nil, err
		}
		return &Result{Shape: shape, Handle: newHandle(r.Name, slots, layers)}, nil
	}

	pl, err := d.plan(r, shape, t, p)
	if err != nil {
		return nil, err
	}
	layers, err := d.draw(ctx, r, pl.slots, p)
	if err != nil {
		return nil, err
	}
	if err := pl.commit(layers); err != nil {
		return nil, err
	}

	d.logger.Debug("dispatch complete",
		"recipe", r.Name,
		"scene", pl.scene.ID(),
		"frames", len(pl.slots),
	)
	return &Result{Shape: shape, Infra: pl.infra, Handle: newHandle(r.Name, pl.slots, layers)}, nil
}

// slot is one frame the drawing logic runs for.
type slot struct {
	frame    *scene.Frame
	row, col int
	name     string
}

type item struct {
	elem scene.Element
	at   scene.Span
}

// plan is the detached infrastructure of a call, attached by commit.
type plan struct {
	scene *scene.Scene
	// grid is the target grid; nil means the scene root, created on commit.
	grid       *scene.Grid
	rows, cols int
	items      []item
	sub        *scene.Grid
	support    scene.Element
	slots      []slot
	infra      *Infrastructure
}

func (d *Dispatcher) plan(r *Recipe, shape Shape, t Target, p Params) (*plan, error) {
	pl := &plan{}
	origin := scene.Cell(0, 0)

	switch shape {
	case ShapeNewScene:
		w, err := p.Scene.Float("width", d.width)
		if err != nil {
			return nil, err
		}
		h, err := p.Scene.Float("height", d.height)
		if err != nil {
			return nil, err
		}
		s, err := scene.New(w, h, scene.WithBackend(d.backend), scene.WithLogger(d.logger))
		if err != nil {
			return nil, err
		}
		pl.scene = s

	case ShapeScene:
		pl.scene = t.Scene
		pl.grid = t.Scene.Root()

	case ShapeScenePosition:
		pl.scene = t.Scene
		pl.grid = t.Position.Grid
		if pl.grid == nil {
			pl.grid = t.Scene.Root()
		}
		origin = t.Position.span()

	case ShapeGridPosition:
		pl.grid = t.Position.Grid
		pl.scene = pl.grid.ParentScene()
		origin = t.Position.span()
	}

	if origin.Row < 0 || origin.Col < 0 {
		return nil, errors.New(errors.ErrCodeSpanOutOfRange, "position %v has a negative index", origin)
	}

	local, err := pl.buildFrames(r, p)
	if err != nil {
		return nil, err
	}
	if r.Support != nil {
		if pl.support, err = r.Support(p); err != nil {
			return nil, err
		}
	}

	if shape == ShapeScene && pl.grid != nil {
		rows, cols := pl.footprint(r, local)
		col, _ := pl.grid.NextFreeBlock(0, rows, cols)
		origin = scene.Cell(0, col)
	}

	if r.Trait == CreatesSublayout {
		if err := pl.buildSublayout(local); err != nil {
			return nil, err
		}
		pl.items = []item{{elem: pl.sub, at: origin}}
	} else {
		pl.items = pl.flatItems(local, origin)
	}

	for _, it := range pl.items {
		pl.rows = max(pl.rows, it.at.Row+it.at.RowSpan)
		pl.cols = max(pl.cols, it.at.Col+it.at.ColSpan)
	}
	if err := pl.checkCompatible(); err != nil {
		return nil, err
	}
	return pl, nil
}

// buildFrames creates the frames of the call and returns their local cells.
func (pl *plan) buildFrames(r *Recipe, p Params) ([]scene.Span, error) {
	title, err := p.Frame.Str("title", "")
	if err != nil {
		return nil, err
	}
	minW, err := p.Frame.Float("min_width", 0)
	if err != nil {
		return nil, err
	}
	minH, err := p.Frame.Float("min_height", 0)
	if err != nil {
		return nil, err
	}
	newFrame := func(title string) *scene.Frame {
		return scene.NewFrame(scene.WithTitle(title), scene.WithMinSize(minW, minH))
	}

	pl.infra = &Infrastructure{arity: r.Arity}
	var local []scene.Span

	switch r.Arity {
	case FacetedFrames:
		rows, cols, err := r.facets(p)
		if err != nil {
			return nil, err
		}
		titles, err := p.Frame.Strings("titles")
		if err != nil {
			return nil, err
		}
		pl.infra.facets = make([][]*scene.Frame, rows)
		for i := range rows {
			pl.infra.facets[i] = make([]*scene.Frame, cols)
			for j := range cols {
				t := ""
				if k := i*cols + j; k < len(titles) {
					t = titles[k]
				}
				f := newFrame(t)
				pl.infra.facets[i][j] = f
				pl.slots = append(pl.slots, slot{frame: f, row: i, col: j})
				local = append(local, scene.Cell(i, j))
			}
		}

	case CustomFrames:
		names, err := r.names(p)
		if err != nil {
			return nil, err
		}
		pl.infra.names = slices.Clone(names)
		pl.infra.named = make(map[string]*scene.Frame, len(names))
		for j, n := range names {
			f := newFrame(n)
			pl.infra.named[n] = f
			pl.slots = append(pl.slots, slot{frame: f, name: n})
			local = append(local, scene.Cell(0, j))
		}

	default:
		f := newFrame(title)
		pl.infra.frame = f
		pl.slots = []slot{{frame: f}}
		local = []scene.Span{scene.Cell(0, 0)}
	}
	return local, nil
}

// buildSublayout wraps the frames, and the support element if any, in a new
// grid.
func (pl *plan) buildSublayout(local []scene.Span) error {
	var rows, cols int
	for _, at := range local {
		rows = max(rows, at.Row+1)
		cols = max(cols, at.Col+1)
	}
	pl.sub = scene.NewGrid(rows, cols)
	for k, at := range local {
		if err := pl.sub.Set(pl.slots[k].frame, at); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "build sub-layout")
		}
	}
	if pl.support != nil {
		if err := pl.sub.InsertCol(cols, box.Auto()); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "add support column")
		}
		if err := pl.sub.Set(pl.support, scene.Cells(0, cols, rows, 1)); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "place support element")
		}
	}
	return nil
}

// footprint is the number of rows and columns the call occupies in its
// target grid. A sub-layout or a lone frame takes a single cell.
func (pl *plan) footprint(r *Recipe, local []scene.Span) (rows, cols int) {
	if r.Trait == CreatesSublayout || len(pl.slots) == 1 {
		return 1, 1
	}
	for _, at := range local {
		rows = max(rows, at.Row+1)
		cols = max(cols, at.Col+1)
	}
	return rows, cols
}

// flatItems offsets the local frame cells by origin. A lone frame takes the
// whole origin span.
func (pl *plan) flatItems(local []scene.Span, origin scene.Span) []item {
	if len(pl.slots) == 1 {
		return []item{{elem: pl.slots[0].frame, at: origin}}
	}
	items := make([]item, len(local))
	for k, at := range local {
		items[k] = item{
			elem: pl.slots[k].frame,
			at:   scene.Cell(origin.Row+at.Row, origin.Col+at.Col),
		}
	}
	return items
}

// checkCompatible rejects placing a sub-layout on top of plain content and
// plain content on top of a sub-layout.
func (pl *plan) checkCompatible() error {
	grid := pl.grid
	if grid == nil {
		return nil
	}
	for _, it := range pl.items {
		_, newIsGrid := it.elem.(*scene.Grid)
		for r := it.at.Row; r < min(it.at.Row+it.at.RowSpan, grid.NumRows()); r++ {
			for c := it.at.Col; c < min(it.at.Col+it.at.ColSpan, grid.NumCols()); c++ {
				for _, existing := range grid.At(r, c) {
					if _, isGrid := existing.(*scene.Grid); isGrid != newIsGrid {
						return errors.New(errors.ErrCodeCellOccupied,
							"cell [%d,%d] of grid %s holds a %s, cannot stack a %s on it",
							r, c, grid.ID(), existing.Kind(), it.elem.Kind())
					}
				}
			}
		}
	}
	return nil
}

// commit attaches the planned content and layers and lays the scene out.
func (pl *plan) commit(layers []*scene.Layer) error {
	grid := pl.grid
	if grid == nil {
		grid = pl.scene.EnsureRoot(pl.rows, pl.cols)
	}
	grid.EnsureSize(pl.rows, pl.cols)

	for _, it := range pl.items {
		if err := grid.Stack(it.elem, it.at); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "attach %s", it.elem.Kind())
		}
	}
	for k, sl := range pl.slots {
		if err := sl.frame.AddLayer(layers[k]); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "attach layer")
		}
	}
	if pl.support != nil && pl.sub == nil {
		pl.scene.Add(pl.support)
	}

	pl.infra.scene = pl.scene
	pl.infra.support = pl.support
	pl.infra.grid = grid
	if pl.sub != nil {
		pl.infra.grid = pl.sub
	}

	pl.scene.Layout()
	return nil
}

// draw runs the drawing logic for every slot concurrently. It returns the
// layers in slot order, or the first error.
func (d *Dispatcher) draw(ctx context.Context, r *Recipe, slots []slot, p Params) ([]*scene.Layer, error) {
	start := time.Now()
	layers := make([]*scene.Layer, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	if d.workers > 0 {
		g.SetLimit(d.workers)
	}
	for i, sl := range slots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			layer, err := r.Draw(gctx, DrawInput{
				Frame:  sl.frame,
				Index:  i,
				Row:    sl.row,
				Col:    sl.col,
				Name:   sl.name,
				Params: p,
			})
			if err != nil {
				return err
			}
			if layer == nil {
				return errors.New(errors.ErrCodeInternal, "recipe %q returned no layer", r.Name)
			}
			if layer.ID == "" {
				layer.ID = uuid.NewString()
			}
			layer.Recipe = r.Name
			layers[i] = layer
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	elapsed := time.Since(start)
	observability.Dispatch().OnDrawComplete(ctx, r.Name, len(slots), elapsed, err)
	if err != nil {
		d.logger.Debug("draw failed", "recipe", r.Name, "error", err)
		return nil, fmt.Errorf("draw %s: %w", r.Name, err)
	}
	d.logger.Debug("draw complete", "recipe", r.Name, "layers", len(layers), "duration", elapsed)
	return layers, nil
}

// Handle refers to the layers one recipe call added.
type Handle struct {
	recipe string
	frames []*scene.Frame
	layers []*scene.Layer
}

func newHandle(recipe string, slots []slot, layers []*scene.Layer) *Handle {
	h := &Handle{recipe: recipe, layers: layers}
	for _, sl := range slots {
		h.frames = append(h.frames, sl.frame)
	}
	return h
}

// Recipe returns the name of the recipe that produced the layers.
func (h *Handle) Recipe() string { return h.recipe }

// Layers returns the added layers, one per frame.
func (h *Handle) Layers() []*scene.Layer { return slices.Clone(h.layers) }

// Layer returns the first added layer.
func (h *Handle) Layer() *scene.Layer {
	if len(h.layers) == 0 {
		return nil
	}
	return h.layers[0]
}

// Frames returns the frames the layers were added to, parallel to Layers.
func (h *Handle) Frames() []*scene.Frame { return slices.Clone(h.frames) }

// Remove takes the layers out of their frames, which recomputes their
// legends. Layers that are already gone are skipped.
func (h *Handle) Remove() {
	for k, l := range h.layers {
		_ = h.frames[k].RemoveLayer(l.ID)
	}
}
