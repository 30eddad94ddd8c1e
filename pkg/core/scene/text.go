package scene

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/scenegrid/pkg/core/box"
)

const (
	DefaultFontSize = 12.0

	charWidthRatio  = 0.55
	lineHeightRatio = 1.2
)

// EstimateText returns the approximate extent of lines set at fontSize,
// assuming an average glyph width.
func EstimateText(lines []string, fontSize float64) box.Size {
	if len(lines) == 0 || fontSize <= 0 {
		return box.Size{}
	}
	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	return box.Size{
		W: float64(longest) * fontSize * charWidthRatio,
		H: float64(len(lines)) * fontSize * lineHeightRatio,
	}
}

// TextBlock is a block of text. A legend block mirrors the legend of a frame
// instead of holding its own text.
type TextBlock struct {
	node
	text     string
	fontSize float64
	legendOf *Frame
}

// NewText creates a text block. Lines are separated by "\n".
func NewText(text string, fontSize float64) *TextBlock {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &TextBlock{node: newNode(), text: text, fontSize: fontSize}
}

// NewLegendBlock creates a text block listing the legend entries of f.
func NewLegendBlock(f *Frame) *TextBlock {
	return &TextBlock{node: newNode(), fontSize: DefaultFontSize, legendOf: f}
}

// Kind returns KindText.
func (t *TextBlock) Kind() ElementKind { return KindText }

// FontSize returns the font size in scene units.
func (t *TextBlock) FontSize() float64 { return t.fontSize }

// LegendOf returns the frame a legend block mirrors, or nil.
func (t *TextBlock) LegendOf() *Frame { return t.legendOf }

// SetText replaces the text. It has no effect on legend blocks.
func (t *TextBlock) SetText(text string) {
	if t.legendOf == nil {
		t.text = text
	}
}

// Text returns the displayed text.
func (t *TextBlock) Text() string {
	return strings.Join(t.Lines(), "\n")
}

// Lines returns the displayed lines. Legend blocks produce one line per
// visible entry of the mirrored frame.
func (t *TextBlock) Lines() []string {
	if t.legendOf != nil {
		return t.legendOf.Legend().Labels()
	}
	if t.text == "" {
		return nil
	}
	return strings.Split(t.text, "\n")
}

// PreferredSize asks the backend to measure the text.
func (t *TextBlock) PreferredSize() box.Size {
	return t.backend().MeasureContent(t)
}

// Place moves the block into r.
func (t *TextBlock) Place(r box.Rect) { t.place(t, r) }

// Surface is a generic drawing surface with an intrinsic size, such as a
// colorbar.
type Surface struct {
	node
	name string
	size box.Size
}

// NewSurface creates a surface asking for w x h units.
func NewSurface(name string, w, h float64) *Surface {
	return &Surface{node: newNode(), name: name, size: box.Size{W: max(0, w), H: max(0, h)}}
}

// Kind returns KindSurface.
func (s *Surface) Kind() ElementKind { return KindSurface }

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// PreferredSize asks the backend to measure the surface.
func (s *Surface) PreferredSize() box.Size {
	return s.backend().MeasureContent(s)
}

// Place moves the surface into r.
func (s *Surface) Place(r box.Rect) { s.place(s, r) }
