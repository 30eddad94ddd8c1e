package scene

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// VisualKey describes how a layer looks in a legend.
type VisualKey struct {
	Marker string `json:"marker,omitempty" toml:"marker" yaml:"marker"`
	Color  string `json:"color,omitempty" toml:"color" yaml:"color"`
	Line   string `json:"line,omitempty" toml:"line" yaml:"line"`
}

// IsZero reports whether no visual attribute is set.
func (k VisualKey) IsZero() bool { return k == VisualKey{} }

// Layer is one drawing operation's contribution to a frame.
type Layer struct {
	ID     string
	Label  string
	Key    VisualKey
	Recipe string
	// Attrs carries recipe-specific data for the rendering backend.
	Attrs map[string]any
}

// NewLayer returns a layer with a fresh ID.
func NewLayer(label string, key VisualKey) *Layer {
	return &Layer{ID: uuid.NewString(), Label: label, Key: key}
}

// Clone returns a copy of l with its own Attrs map.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Attrs = maps.Clone(l.Attrs)
	return &c
}

// Frame is a coordinate frame: a placeable container of plotted layers with
// a legend that tracks them.
type Frame struct {
	node
	title   string
	layers  []*Layer
	legend  *Legend
	minSize box.Size
}

// FrameOption configures a Frame.
type FrameOption func(*Frame)

// WithTitle sets the frame title.
func WithTitle(title string) FrameOption {
	return func(f *Frame) { f.title = title }
}

// WithMinSize sets the size the frame asks for from Auto tracks.
func WithMinSize(w, h float64) FrameOption {
	return func(f *Frame) { f.minSize = box.Size{W: max(0, w), H: max(0, h)} }
}

// NewFrame creates an empty frame.
func NewFrame(opts ...FrameOption) *Frame {
	f := &Frame{node: newNode(), legend: newLegend()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Kind returns KindFrame.
func (f *Frame) Kind() ElementKind { return KindFrame }

// Title returns the frame title.
func (f *Frame) Title() string { return f.title }

// SetTitle changes the frame title.
func (f *Frame) SetTitle(title string) { f.title = title }

// MinSize returns the configured minimum size.
func (f *Frame) MinSize() box.Size { return f.minSize }

// Legend returns the frame's legend aggregator.
func (f *Frame) Legend() *Legend { return f.legend }

// Layers returns the layers in the order they were added.
func (f *Frame) Layers() []*Layer { return slices.Clone(f.layers) }

// AddLayer appends l and recomputes the legend.
func (f *Frame) AddLayer(l *Layer) error {
	if l == nil {
		return errors.New(errors.ErrCodeInvalidInput, "layer is nil")
	}
	if slices.Contains(f.layers, l) {
		return errors.New(errors.ErrCodeInvalidInput, "layer %s already in frame %s", l.ID, f.id)
	}
	f.layers = append(f.layers, l)
	f.legend.recompute(f.layers)
	return nil
}

// RemoveLayer drops the layer with the given ID and recomputes the legend.
func (f *Frame) RemoveLayer(id string) error {
	i := slices.IndexFunc(f.layers, func(l *Layer) bool { return l.ID == id })
	if i < 0 {
		return errors.New(errors.ErrCodeElementNotFound, "layer %s not in frame %s", id, f.id)
	}
	f.layers = slices.Delete(f.layers, i, i+1)
	f.legend.recompute(f.layers)
	return nil
}

// PreferredSize asks the backend to measure the frame.
func (f *Frame) PreferredSize() box.Size {
	return f.backend().MeasureContent(f)
}

// Place moves the frame into r.
func (f *Frame) Place(r box.Rect) { f.place(f, r) }
