package box

import "fmt"

// Kind selects how a track is sized.
type Kind int

const (
	// KindRelative tracks share leftover length proportional to their weight.
	KindRelative Kind = iota
	// KindFixed tracks always get their exact length.
	KindFixed
	// KindAuto tracks get their measured content length.
	KindAuto
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindAuto:
		return "auto"
	default:
		return "relative"
	}
}

// Policy is the sizing request of a single track.
//
// Value is interpreted by Kind: a length for Fixed, a weight for Relative and
// the measured preferred length for Auto (filled in by the grid before
// resolution).
type Policy struct {
	Kind  Kind
	Value float64
}

// Fixed returns a policy requesting exactly length units.
func Fixed(length float64) Policy { return Policy{Kind: KindFixed, Value: length} }

// Relative returns a policy sharing leftover length with the given weight.
func Relative(weight float64) Policy { return Policy{Kind: KindRelative, Value: weight} }

// Auto returns a policy sized from content.
func Auto() Policy { return Policy{Kind: KindAuto} }

// Measured returns a copy of an Auto policy carrying the measured length.
// Other kinds are returned unchanged.
func (p Policy) Measured(length float64) Policy {
	if p.Kind != KindAuto {
		return p
	}
	p.Value = length
	return p
}

func (p Policy) String() string {
	switch p.Kind {
	case KindFixed:
		return fmt.Sprintf("fixed(%g)", p.Value)
	case KindAuto:
		return "auto"
	default:
		return fmt.Sprintf("relative(%g)", p.Value)
	}
}

// Extent is the resolved position of one track along its axis.
type Extent struct {
	Offset float64
	Length float64
}

// End returns the offset just past the track.
func (e Extent) End() float64 { return e.Offset + e.Length }

// Span returns the offset and total length covered by extents[from:from+n].
func Span(extents []Extent, from, n int) (offset, length float64) {
	if n <= 0 || from < 0 || from+n > len(extents) {
		return 0, 0
	}
	first, last := extents[from], extents[from+n-1]
	return first.Offset, last.End() - first.Offset
}
