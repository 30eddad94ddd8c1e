package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/core/scene"
)

type layout struct {
	ID       string    `json:"id"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Root     *element  `json:"root,omitempty"`
	Elements []element `json:"elements,omitempty"`
}

type element struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Span     *span         `json:"span,omitempty"`
	Bounds   *rect         `json:"bounds,omitempty"`
	Rows     []string      `json:"rows,omitempty"`
	Cols     []string      `json:"cols,omitempty"`
	Title    string        `json:"title,omitempty"`
	Text     string        `json:"text,omitempty"`
	Name     string        `json:"name,omitempty"`
	Layers   []layer       `json:"layers,omitempty"`
	Legend   []legendEntry `json:"legend,omitempty"`
	Children []element     `json:"children,omitempty"`
}

type span struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`
}

type rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type layer struct {
	ID     string          `json:"id"`
	Label  string          `json:"label,omitempty"`
	Recipe string          `json:"recipe,omitempty"`
	Key    scene.VisualKey `json:"key"`
}

type legendEntry struct {
	Label string          `json:"label"`
	Key   scene.VisualKey `json:"key"`
}

// WriteLayout encodes the resolved layout of s as JSON and writes it to w.
// Every element carries its kind, the cell span it occupies and, once
// placed, its box. Frames list their layers and legend entries. Top-level
// elements outside the layout tree are listed under "elements".
func WriteLayout(s *scene.Scene, w io.Writer) error {
	size := s.Size()
	out := layout{ID: s.ID(), Width: size.W, Height: size.H}

	seen := make(map[string]bool)
	if root := s.Root(); root != nil {
		e := encode(root, nil, seen)
		out.Root = &e
	}
	for _, e := range s.Elements() {
		if !seen[e.ID()] {
			out.Elements = append(out.Elements, encode(e, nil, seen))
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportLayout writes the resolved layout of s to a JSON file at path.
// This is a convenience wrapper around [WriteLayout] for file-based output.
func ExportLayout(s *scene.Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(s, f)
}

func encode(e scene.Element, at *scene.Span, seen map[string]bool) element {
	seen[e.ID()] = true
	out := element{ID: e.ID(), Kind: e.Kind().String()}
	if at != nil {
		out.Span = &span{Row: at.Row, Col: at.Col, RowSpan: at.RowSpan, ColSpan: at.ColSpan}
	}
	if e.Placed() {
		out.Bounds = toRect(e.Bounds())
	}

	switch v := e.(type) {
	case *scene.Grid:
		out.Rows = policies(v.RowPolicies())
		out.Cols = policies(v.ColPolicies())
		for _, p := range v.Contents() {
			out.Children = append(out.Children, encode(p.Content, &p.Span, seen))
		}
	case *scene.Frame:
		out.Title = v.Title()
		for _, l := range v.Layers() {
			out.Layers = append(out.Layers, layer{ID: l.ID, Label: l.Label, Recipe: l.Recipe, Key: l.Key})
		}
		if v.Legend().Visible {
			for _, entry := range v.Legend().Entries() {
				out.Legend = append(out.Legend, legendEntry{Label: entry.Label, Key: entry.Key})
			}
		}
	case *scene.TextBlock:
		out.Text = v.Text()
	case *scene.Surface:
		out.Name = v.Name()
	}
	return out
}

func toRect(r box.Rect) *rect {
	return &rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func policies(ps []box.Policy) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
