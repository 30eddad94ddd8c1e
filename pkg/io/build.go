package io

import (
	"context"
	"fmt"

	"github.com/matzehuels/scenegrid/pkg/core/recipe"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Built is a scene produced from a [Document].
type Built struct {
	Scene   *scene.Scene
	Results []*recipe.Result
	// Frames and Grids hold the named infrastructure of the calls.
	Frames map[string]*scene.Frame
	Grids  map[string]*scene.Grid
}

// Build runs every call of doc in order against a fresh scene. The scene is
// created with opts; a zero document size falls back to the dispatcher's
// default scene size. The first failing call aborts the build.
func Build(ctx context.Context, d *recipe.Dispatcher, doc *Document, opts ...scene.Option) (*Built, error) {
	w, h := doc.Width, doc.Height
	dw, dh := d.SceneSize()
	if w == 0 {
		w = dw
	}
	if h == 0 {
		h = dh
	}
	s, err := scene.New(w, h, opts...)
	if err != nil {
		return nil, err
	}

	b := &Built{
		Scene:  s,
		Frames: make(map[string]*scene.Frame),
		Grids:  make(map[string]*scene.Grid),
	}
	for i, c := range doc.Calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := b.target(c)
		if err != nil {
			return nil, fmt.Errorf("call %d (%s): %w", i+1, c.Recipe, err)
		}
		res, err := d.Run(ctx, c.Recipe, t, c.Params())
		if err != nil {
			return nil, fmt.Errorf("call %d (%s): %w", i+1, c.Recipe, err)
		}
		b.Results = append(b.Results, res)
		if c.Name != "" {
			b.register(c.Name, res)
		}
	}
	s.Layout()
	return b, nil
}

func (b *Built) target(c Call) (recipe.Target, error) {
	switch {
	case c.Into != "":
		f, ok := b.Frames[c.Into]
		if !ok {
			return recipe.Target{}, errors.New(errors.ErrCodeInvalidInput, "no frame named %q", c.Into)
		}
		return recipe.Target{Frame: f}, nil

	case len(c.At) == 2:
		pos := &recipe.Position{Row: c.At[0], Col: c.At[1]}
		if len(c.Span) == 2 {
			pos.RowSpan, pos.ColSpan = c.Span[0], c.Span[1]
		}
		if c.Grid == "" {
			return recipe.Target{Scene: b.Scene, Position: pos}, nil
		}
		g, ok := b.Grids[c.Grid]
		if !ok {
			return recipe.Target{}, errors.New(errors.ErrCodeInvalidInput, "no grid named %q", c.Grid)
		}
		pos.Grid = g
		return recipe.Target{Position: pos}, nil

	default:
		return recipe.Target{Scene: b.Scene}, nil
	}
}

func (b *Built) register(name string, res *recipe.Result) {
	infra := res.Infra
	if infra == nil {
		return
	}
	if g := infra.Grid(); g != nil {
		b.Grids[name] = g
	}
	if f := infra.Frame(); f != nil {
		b.Frames[name] = f
	}
	for r, row := range infra.Facets() {
		for c, f := range row {
			b.Frames[fmt.Sprintf("%s/%d,%d", name, r, c)] = f
		}
	}
	for _, n := range infra.Names() {
		if f, ok := infra.Named(n); ok {
			b.Frames[name+"/"+n] = f
		}
	}
}
