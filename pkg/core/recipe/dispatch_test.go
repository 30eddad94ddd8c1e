package recipe

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

func lineParams(label string, ys ...any) Params {
	return Params{Layer: Values{"label": label, "y": ys}}
}

func TestNewSceneSingleFrame(t *testing.T) {
	d := NewDispatcher(nil)

	res, err := d.Run(context.Background(), "lines", Target{}, lineParams("a", 1, 2, 3))
	require.NoError(t, err)

	assert.Equal(t, ShapeNewScene, res.Shape)
	infra := res.Infra
	require.NotNil(t, infra)
	assert.Equal(t, SingleFrame, infra.Arity())
	require.NotNil(t, infra.Scene())

	grid := infra.Grid()
	require.NotNil(t, grid)
	assert.Same(t, infra.Scene().Root(), grid)
	assert.Equal(t, 1, grid.NumRows())
	assert.Equal(t, 1, grid.NumCols())

	f := infra.Frame()
	require.NotNil(t, f)
	assert.True(t, f.Placed())
	assert.Equal(t, infra.Scene().Bounds(), f.Bounds())
	assert.Equal(t, box.Rect{W: DefaultWidth, H: DefaultHeight}, f.Bounds())

	require.Len(t, f.Layers(), 1)
	assert.Equal(t, "lines", f.Layers()[0].Recipe)
	assert.Equal(t, []string{"a"}, f.Legend().Labels())
	assert.Same(t, f.Layers()[0], res.Handle.Layer())
}

func TestSceneAppendsAtNextFreeColumn(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()

	first, err := d.Run(ctx, "lines", Target{}, lineParams("a", 1, 2))
	require.NoError(t, err)
	s := first.Infra.Scene()
	existing := first.Infra.Frame()

	second, err := d.Run(ctx, "scatter", Target{Scene: s}, lineParams("b", 3, 4))
	require.NoError(t, err)
	assert.Equal(t, ShapeScene, second.Shape)

	root := s.Root()
	assert.Equal(t, 2, root.NumCols())
	at, ok := root.SpanOf(existing)
	require.True(t, ok)
	assert.Equal(t, scene.Cell(0, 0), at)

	added := second.Infra.Frame()
	at, ok = root.SpanOf(added)
	require.True(t, ok)
	assert.Equal(t, scene.Cell(0, 1), at)
	assert.NotSame(t, existing, added)
	assert.Len(t, existing.Layers(), 1)

	assert.Equal(t, box.Rect{W: 400, H: 600}, existing.Bounds())
	assert.Equal(t, box.Rect{X: 400, W: 400, H: 600}, added.Bounds())
}

func TestSceneWithoutRootBehavesLikeNewScene(t *testing.T) {
	s, err := scene.New(300, 200)
	require.NoError(t, err)

	res, err := NewDispatcher(nil).Run(context.Background(), "lines", Target{Scene: s}, lineParams("a", 1))
	require.NoError(t, err)

	assert.Same(t, s, res.Infra.Scene())
	require.NotNil(t, s.Root())
	assert.Equal(t, s.Bounds(), res.Infra.Frame().Bounds())
}

func TestScenePositionStacks(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()
	first, err := d.Run(ctx, "lines", Target{}, lineParams("a", 1))
	require.NoError(t, err)
	s := first.Infra.Scene()

	res, err := d.Run(ctx, "lines", Target{Scene: s, Position: At(0, 0)}, lineParams("b", 2))
	require.NoError(t, err)
	assert.Equal(t, ShapeScenePosition, res.Shape)

	got := s.Root().At(0, 0)
	require.Len(t, got, 2)
	assert.Same(t, first.Infra.Frame(), got[0])
	assert.Same(t, res.Infra.Frame(), got[1])

	// positions outside the grid grow it
	res, err = d.Run(ctx, "lines", Target{Scene: s, Position: At(2, 1)}, lineParams("c", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Root().NumRows())
	assert.Equal(t, 2, s.Root().NumCols())
	at, _ := s.Root().SpanOf(res.Infra.Frame())
	assert.Equal(t, scene.Cell(2, 1), at)
}

func TestScenePositionIncompatibleContent(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()
	facets, err := d.Run(ctx, "facet", Target{}, Params{
		Frame: Values{"rows": 1, "cols": 2},
		Layer: Values{"y": []any{1, 2}},
	})
	require.NoError(t, err)
	s := facets.Infra.Scene()
	before := len(s.Root().Contents())

	_, err = d.Run(ctx, "lines", Target{Scene: s, Position: At(0, 0)}, lineParams("x", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCellOccupied), "got %v", err)
	assert.True(t, errors.IsAmbiguousTarget(err))
	assert.Len(t, s.Root().Contents(), before)

	// a sub-layout stacks on a sub-layout
	_, err = d.Run(ctx, "heatmap", Target{Scene: s, Position: At(0, 0)}, Params{
		Layer: Values{"values": []any{[]any{1, 2}, []any{3, 4}}},
	})
	require.NoError(t, err)
	assert.Len(t, s.Root().At(0, 0), 2)
}

func TestGridPositionInfersScene(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()
	first, err := d.Run(ctx, "lines", Target{}, lineParams("a", 1))
	require.NoError(t, err)
	s := first.Infra.Scene()

	res, err := d.Run(ctx, "lines", Target{Position: In(s.Root(), 1, 0)}, lineParams("b", 2))
	require.NoError(t, err)
	assert.Equal(t, ShapeGridPosition, res.Shape)
	assert.Same(t, s, res.Infra.Scene())
	assert.Same(t, s.Root(), res.Infra.Grid())

	_, err = d.Run(ctx, "lines", Target{Position: In(scene.NewGrid(1, 1), 0, 0)}, lineParams("c", 3))
	assert.True(t, errors.Is(err, errors.ErrCodeNoParentScene), "got %v", err)
}

func TestGridPositionInBoundLooseGrid(t *testing.T) {
	s, err := scene.New(300, 200)
	require.NoError(t, err)
	s.EnsureRoot(1, 1)
	g := scene.NewGrid(1, 1)
	g.SetParentScene(s)

	res, err := NewDispatcher(nil).Run(context.Background(), "lines", Target{Position: In(g, 0, 0)}, lineParams("a", 1, 2))
	require.NoError(t, err)
	assert.Equal(t, ShapeGridPosition, res.Shape)
	assert.Same(t, s, res.Infra.Scene())
	assert.Same(t, g, res.Infra.Grid())

	f := res.Infra.Frame()
	require.NotNil(t, f)
	assert.True(t, f.Placed())
	assert.Equal(t, s.Bounds(), f.Bounds())
	assert.Contains(t, s.Frames(), f)
	assert.Contains(t, s.Elements(), scene.Element(g))
}

func TestExistingFrameAddsLayerOnly(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()
	first, err := d.Run(ctx, "lines", Target{}, lineParams("a", 1, 2))
	require.NoError(t, err)
	f := first.Infra.Frame()
	s := first.Infra.Scene()
	rev := f.Legend().Revision()

	res, err := d.Run(ctx, "scatter", Target{Frame: f}, lineParams("b", 3, 4))
	require.NoError(t, err)
	assert.Equal(t, ShapeFrame, res.Shape)
	assert.Nil(t, res.Infra)
	require.NotNil(t, res.Handle)

	assert.Len(t, s.Root().Contents(), 1)
	assert.Len(t, f.Layers(), 2)
	assert.Equal(t, []string{"a", "b"}, f.Legend().Labels())
	assert.Equal(t, rev+1, f.Legend().Revision())

	// second layer picks the next palette color
	assert.Equal(t, PaletteColor(1), f.Layers()[1].Key.Color)

	res.Handle.Remove()
	assert.Len(t, f.Layers(), 1)
	assert.Equal(t, []string{"a"}, f.Legend().Labels())
}

func TestLegendMergesAcrossCalls(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()
	first, err := d.Run(ctx, "lines", Target{}, lineParams("a", 1))
	require.NoError(t, err)
	f := first.Infra.Frame()

	_, err = d.Run(ctx, "lines", Target{Frame: f}, lineParams("b", 1))
	require.NoError(t, err)
	third, err := d.Run(ctx, "scatter", Target{Frame: f}, lineParams("a", 1))
	require.NoError(t, err)

	entries := f.Legend().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Label)
	assert.Equal(t, third.Handle.Layer().Key, entries[0].Key)
	assert.Equal(t, "b", entries[1].Label)
}

func TestHeatmapCreatesSublayoutWithColorbar(t *testing.T) {
	res, err := NewDispatcher(nil).Run(context.Background(), "heatmap", Target{}, Params{
		Frame: Values{"colorbar_width": 40},
		Layer: Values{"values": []any{[]any{1, 2}, []any{3, 4}}},
	})
	require.NoError(t, err)

	infra := res.Infra
	sub := infra.Grid()
	require.NotNil(t, sub)
	assert.NotSame(t, infra.Scene().Root(), sub)
	assert.Same(t, infra.Scene().Root(), sub.Parent())

	bar, ok := infra.Support().(*scene.Surface)
	require.True(t, ok, "support slot should hold the colorbar")
	assert.Equal(t, box.Rect{X: 760, W: 40, H: 600}, bar.Bounds())
	assert.Equal(t, box.Rect{W: 760, H: 600}, infra.Frame().Bounds())

	layer := res.Handle.Layer()
	assert.Equal(t, 1.0, layer.Attrs["min"])
	assert.Equal(t, 4.0, layer.Attrs["max"])
}

func TestFacetedFrames(t *testing.T) {
	res, err := NewDispatcher(nil).Run(context.Background(), "facet", Target{}, Params{
		Frame: Values{"rows": 2, "cols": 2, "titles": []any{"nw", "ne", "sw", "se"}},
		Layer: Values{"y": []any{[]any{1}, []any{2}, []any{3}, []any{4}}},
	})
	require.NoError(t, err)

	infra := res.Infra
	assert.Equal(t, FacetedFrames, infra.Arity())
	facets := infra.Facets()
	require.Len(t, facets, 2)
	require.Len(t, facets[1], 2)

	se, ok := infra.Facet(1, 1)
	require.True(t, ok)
	assert.Equal(t, "se", se.Title())
	assert.Equal(t, []float64{4}, se.Layers()[0].Attrs["y"])
	assert.Equal(t, box.Rect{X: 400, Y: 300, W: 400, H: 300}, se.Bounds())

	_, ok = infra.Facet(2, 0)
	assert.False(t, ok)
	assert.Len(t, infra.Frames(), 4)
	assert.Len(t, res.Handle.Layers(), 4)
}

func TestCustomFramesFlat(t *testing.T) {
	res, err := NewDispatcher(nil).Run(context.Background(), "panels", Target{}, Params{
		Frame: Values{"names": []any{"left", "right"}},
		Layer: Values{"left": []any{1, 2}, "y": []any{5, 6}},
	})
	require.NoError(t, err)

	infra := res.Infra
	assert.Equal(t, CustomFrames, infra.Arity())
	assert.Equal(t, []string{"left", "right"}, infra.Names())
	assert.Same(t, infra.Scene().Root(), infra.Grid())

	left, ok := infra.Named("left")
	require.True(t, ok)
	right, _ := infra.Named("right")
	assert.Equal(t, []float64{1, 2}, left.Layers()[0].Attrs["y"])
	assert.Equal(t, []float64{5, 6}, right.Layers()[0].Attrs["y"])

	at, _ := infra.Grid().SpanOf(right)
	assert.Equal(t, scene.Cell(0, 1), at)
}

func TestSceneFlatFramesSkipNarrowGaps(t *testing.T) {
	tests := []struct {
		name     string
		cols     int
		occupied []int
		want     []int
		wantCols int
	}{
		{"gap too narrow appends", 3, []int{0, 2}, []int{3, 4}, 5},
		{"gap wide enough is filled", 4, []int{0, 3}, []int{1, 2}, 4},
		{"empty root starts at zero", 2, nil, []int{0, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := scene.New(600, 200)
			require.NoError(t, err)
			root := s.EnsureRoot(1, tt.cols)
			for _, c := range tt.occupied {
				require.NoError(t, root.Set(scene.NewFrame(), scene.Cell(0, c)))
			}

			res, err := NewDispatcher(nil).Run(context.Background(), "panels", Target{Scene: s}, Params{
				Frame: Values{"names": []any{"l", "r"}},
				Layer: Values{"y": []any{1, 2}},
			})
			require.NoError(t, err)
			assert.Equal(t, ShapeScene, res.Shape)
			assert.Equal(t, tt.wantCols, root.NumCols())

			for i, name := range []string{"l", "r"} {
				f, ok := res.Infra.Named(name)
				require.True(t, ok)
				at, ok := root.SpanOf(f)
				require.True(t, ok)
				assert.Equal(t, scene.Cell(0, tt.want[i]), at, name)
			}
			for c := 0; c < root.NumCols(); c++ {
				assert.LessOrEqual(t, len(root.At(0, c)), 1, "column %d", c)
			}
		})
	}
}

func TestPredict(t *testing.T) {
	d := NewDispatcher(nil)
	s, err := scene.New(100, 100)
	require.NoError(t, err)
	f := scene.NewFrame()

	tests := []struct {
		name      string
		recipe    string
		target    Target
		shape     Shape
		sublayout bool
		infra     bool
	}{
		{"new scene", "lines", Target{}, ShapeNewScene, false, true},
		{"scene heatmap", "heatmap", Target{Scene: s}, ShapeScene, true, true},
		{"position", "facet", Target{Scene: s, Position: At(0, 0)}, ShapeScenePosition, true, true},
		{"frame", "heatmap", Target{Frame: f}, ShapeFrame, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := d.Predict(tt.recipe, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, p.Shape)
			assert.Equal(t, tt.sublayout, p.Sublayout)
			assert.Equal(t, tt.infra, p.Infrastructure)
		})
	}

	assert.Nil(t, s.Root(), "Predict must not touch the scene")

	_, err = d.Predict("nope", Target{})
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownRecipe))
}

func TestResolveShapeErrors(t *testing.T) {
	s, _ := scene.New(10, 10)
	other, _ := scene.New(10, 10)
	foreign := other.EnsureRoot(1, 1)

	tests := []struct {
		name   string
		target Target
		code   errors.Code
	}{
		{"frame and scene", Target{Frame: scene.NewFrame(), Scene: s}, errors.ErrCodeAmbiguousTarget},
		{"position without grid or scene", Target{Position: At(0, 0)}, errors.ErrCodeAmbiguousTarget},
		{"unbound grid", Target{Position: In(scene.NewGrid(1, 1), 0, 0)}, errors.ErrCodeNoParentScene},
		{"grid of another scene", Target{Scene: s, Position: In(foreign, 0, 0)}, errors.ErrCodeForeignGrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveShape(tt.target)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestDrawFailureLeavesSceneUntouched(t *testing.T) {
	reg := NewRegistry()
	var calls atomic.Int32
	reg.MustRegister(&Recipe{
		Name:  "flaky",
		Arity: FacetedFrames,
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			calls.Add(1)
			if in.Index == 2 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "bad facet")
			}
			return scene.NewLayer("ok", scene.VisualKey{}), nil
		},
	})
	d := NewDispatcher(reg)

	s, err := scene.New(100, 100)
	require.NoError(t, err)
	root := s.EnsureRoot(1, 1)
	f := scene.NewFrame()
	require.NoError(t, root.Set(f, scene.Cell(0, 0)))

	_, err = d.Run(context.Background(), "flaky", Target{Scene: s}, Params{Frame: Values{"rows": 1, "cols": 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	assert.Equal(t, 1, root.NumCols())
	assert.Len(t, root.Contents(), 1)
	assert.Positive(t, calls.Load())
}

func TestCancelledDrawLeavesFrameUntouched(t *testing.T) {
	reg := NewRegistry()
	started := make(chan struct{})
	reg.MustRegister(&Recipe{
		Name: "slow",
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			close(started)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return scene.NewLayer("late", scene.VisualKey{}), nil
			}
		},
	})
	d := NewDispatcher(reg)
	f := scene.NewFrame()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := d.Run(ctx, "slow", Target{Frame: f}, Params{})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, f.Layers())
	assert.Equal(t, scene.LegendEmpty, f.Legend().State())
	assert.Zero(t, f.Legend().Revision())
}

func TestRecipeValidation(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		name string
		r    *Recipe
	}{
		{"nil", nil},
		{"bad name", &Recipe{Name: "Bad Name", Draw: Lines().Draw}},
		{"no draw", &Recipe{Name: "empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, reg.Register(tt.r))
		})
	}

	assert.Equal(t, []string{"facet", "heatmap", "lines", "panels", "scatter"}, Builtins().Names())
}

func TestParamsErrors(t *testing.T) {
	_, err := NewDispatcher(nil).Run(context.Background(), "lines", Target{}, Params{
		Layer: Values{"y": "not numbers"},
	})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)

	_, err = NewDispatcher(nil).Run(context.Background(), "lines", Target{}, Params{
		Scene: Values{"width": -5},
		Layer: Values{"y": []any{1}},
	})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}
