package recipe

import (
	"context"
	"math"

	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Palette is the color cycle used when a layer does not name a color.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// PaletteColor returns the i-th palette color, cycling.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Builtins returns a registry holding the built-in recipes.
func Builtins() *Registry {
	reg := NewRegistry()
	for _, r := range []*Recipe{Lines(), Scatter(), Heatmap(), Facet(), Panels()} {
		reg.MustRegister(r)
	}
	return reg
}

// Lines draws a polyline from the layer parameters "y" and optional "x".
func Lines() *Recipe {
	return &Recipe{
		Name:        "lines",
		Description: "connected line series",
		Arity:       SingleFrame,
		Trait:       NoSublayout,
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			return drawSeries(in, "y", scene.VisualKey{Line: "-"})
		},
	}
}

// Scatter draws markers from the layer parameters "y" and optional "x".
func Scatter() *Recipe {
	return &Recipe{
		Name:        "scatter",
		Description: "unconnected markers",
		Arity:       SingleFrame,
		Trait:       NoSublayout,
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			marker, err := in.Params.Layer.Str("marker", "o")
			if err != nil {
				return nil, err
			}
			return drawSeries(in, "y", scene.VisualKey{Marker: marker})
		},
	}
}

// Heatmap draws the matrix in the layer parameter "values" and adds a
// colorbar next to the frame.
func Heatmap() *Recipe {
	return &Recipe{
		Name:        "heatmap",
		Description: "color-mapped matrix with colorbar",
		Arity:       SingleFrame,
		Trait:       CreatesSublayout,
		Draw:        drawHeatmap,
		Support: func(p Params) (scene.Element, error) {
			w, err := p.Frame.Float("colorbar_width", 24)
			if err != nil {
				return nil, err
			}
			return scene.NewSurface("colorbar", w, 0), nil
		},
	}
}

// Facet draws one series per facet of a rows x cols grid. The layer
// parameter "y" is either one series shared by every facet or a list with
// one series per facet in row-major order.
func Facet() *Recipe {
	return &Recipe{
		Name:        "facet",
		Description: "small multiples on a rows x cols grid",
		Arity:       FacetedFrames,
		Trait:       CreatesSublayout,
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			if _, err := in.Params.Layer.Floats("y"); err == nil {
				return drawSeries(in, "y", scene.VisualKey{Line: "-"})
			}
			series, err := in.Params.Layer.Matrix("y")
			if err != nil {
				return nil, err
			}
			if in.Index >= len(series) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "facet %d has no series (got %d)", in.Index, len(series))
			}
			in.Params = in.Params.Clone()
			in.Params.Layer["y"] = series[in.Index]
			return drawSeries(in, "y", scene.VisualKey{Line: "-"})
		},
	}
}

// Panels draws one series per named frame. Each frame reads the layer
// parameter named after it, falling back to "y".
func Panels() *Recipe {
	return &Recipe{
		Name:        "panels",
		Description: "named frames side by side",
		Arity:       CustomFrames,
		Trait:       NoSublayout,
		Draw: func(ctx context.Context, in DrawInput) (*scene.Layer, error) {
			key := "y"
			if _, ok := in.Params.Layer[in.Name]; ok {
				key = in.Name
			}
			return drawSeries(in, key, scene.VisualKey{Line: "-"})
		},
	}
}

func drawSeries(in DrawInput, key string, style scene.VisualKey) (*scene.Layer, error) {
	lp := in.Params.Layer
	ys, err := lp.Floats(key)
	if err != nil {
		return nil, err
	}
	if len(ys) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layer parameter %q is empty", key)
	}
	xs, err := lp.Floats("x")
	if err != nil {
		return nil, err
	}
	if xs == nil {
		xs = make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
	}
	if len(xs) != len(ys) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "x has %d values, %s has %d", len(xs), key, len(ys))
	}

	label, err := lp.Str("label", "")
	if err != nil {
		return nil, err
	}
	color, err := lp.Str("color", "")
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = PaletteColor(len(in.Frame.Layers()))
	}
	style.Color = color

	layer := scene.NewLayer(label, style)
	layer.Attrs = map[string]any{"x": xs, "y": ys}
	return layer, nil
}

func drawHeatmap(ctx context.Context, in DrawInput) (*scene.Layer, error) {
	values, err := in.Params.Layer.Matrix("values")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layer parameter \"values\" is empty")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, row := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(row) != len(values[0]) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "row %d has %d values, want %d", i, len(row), len(values[0]))
		}
		for _, v := range row {
			lo, hi = min(lo, v), max(hi, v)
		}
	}

	label, err := in.Params.Layer.Str("label", "")
	if err != nil {
		return nil, err
	}
	cmap, err := in.Params.Layer.Str("cmap", "viridis")
	if err != nil {
		return nil, err
	}
	layer := scene.NewLayer(label, scene.VisualKey{Color: cmap})
	layer.Attrs = map[string]any{"values": values, "min": lo, "max": hi}
	return layer, nil
}
