package scene

import "strings"

// LegendState is the state of a legend aggregator.
type LegendState int

const (
	LegendEmpty LegendState = iota
	LegendHasEntries
)

func (s LegendState) String() string {
	if s == LegendHasEntries {
		return "has-entries"
	}
	return "empty"
}

// LegendEntry is one visible legend row.
type LegendEntry struct {
	Label string
	Key   VisualKey
	// LayerID is the layer that supplied Key.
	LayerID string
}

// Legend aggregates the labelled layers of a frame.
//
// The entry list is rebuilt whenever a layer is added or removed, whether or
// not the legend is shown. Entries are unique by label: the position comes
// from the first layer carrying the label and the key from the last one.
// Layers with an empty label or a label starting with "_" are left out.
type Legend struct {
	// Visible controls display only; it never affects recomputation.
	Visible bool

	state    LegendState
	entries  []LegendEntry
	revision int
}

func newLegend() *Legend {
	return &Legend{Visible: true}
}

// State returns whether the legend has entries.
func (l *Legend) State() LegendState { return l.state }

// Entries returns a copy of the visible entries in display order.
func (l *Legend) Entries() []LegendEntry {
	out := make([]LegendEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Legend) Len() int { return len(l.entries) }

// Revision counts recomputations since the frame was created.
func (l *Legend) Revision() int { return l.revision }

// Labels returns the entry labels in display order.
func (l *Legend) Labels() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Label
	}
	return out
}

func (l *Legend) recompute(layers []*Layer) {
	l.revision++
	l.entries = l.entries[:0]
	index := make(map[string]int, len(layers))
	for _, layer := range layers {
		if !Labelled(layer.Label) {
			continue
		}
		entry := LegendEntry{Label: layer.Label, Key: layer.Key, LayerID: layer.ID}
		if i, ok := index[layer.Label]; ok {
			l.entries[i] = entry
			continue
		}
		index[layer.Label] = len(l.entries)
		l.entries = append(l.entries, entry)
	}
	if len(l.entries) > 0 {
		l.state = LegendHasEntries
	} else {
		l.state = LegendEmpty
	}
}

// Labelled reports whether a layer label produces a legend entry.
func Labelled(label string) bool {
	return label != "" && !strings.HasPrefix(label, "_")
}
