package box

import "math"

const eps = 1e-9

// Resolution is the full result of resolving one axis.
type Resolution struct {
	Extents []Extent

	// Available is the length that was offered (negative and NaN become 0).
	Available float64

	// Demand is the sum of Fixed lengths and measured Auto lengths.
	Demand float64

	// Overflow is how far Demand exceeds Available, or 0.
	Overflow float64
}

// Total returns the summed length of all extents.
func (r Resolution) Total() float64 {
	if len(r.Extents) == 0 {
		return 0
	}
	return r.Extents[len(r.Extents)-1].End()
}

// ResolveTracks computes concrete extents for tracks within available length.
// See [Resolve] for the overflow details.
func ResolveTracks(tracks []Policy, available float64) []Extent {
	return Resolve(tracks, available).Extents
}

// Resolve computes concrete extents for tracks within available length.
//
// Fixed tracks are assigned first, then Auto tracks receive their measured
// length, and Relative tracks split what is left by weight. When the Auto
// tracks ask for more than the Fixed tracks leave over, each is capped at an
// equal share of that remainder. Leftover length with no Relative track to
// absorb it is spread equally over Auto tracks, and failing those over Fixed
// tracks, which makes Fixed lengths minimums.
func Resolve(tracks []Policy, available float64) Resolution {
	if math.IsNaN(available) || available < 0 {
		available = 0
	}

	res := Resolution{Available: available}
	if len(tracks) == 0 {
		return res
	}

	lengths := make([]float64, len(tracks))
	var fixed, autos, rels []int
	var fixedSum, autoDemand, totalWeight float64

	for i, t := range tracks {
		v := t.Value
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		switch t.Kind {
		case KindFixed:
			lengths[i] = v
			fixedSum += v
			fixed = append(fixed, i)
		case KindAuto:
			autoDemand += v
			autos = append(autos, i)
		default:
			if v > 0 {
				rels = append(rels, i)
				totalWeight += v
			}
		}
	}

	res.Demand = fixedSum + autoDemand
	if res.Demand > available+eps {
		res.Overflow = res.Demand - available
	}

	remaining := max(0, available-fixedSum)

	// capped is set when Auto demand exceeds what Fixed tracks leave over.
	// Each Auto track then gets at most an equal share of that remainder.
	var autoShare float64
	autoBudget := remaining
	capped := autoDemand > remaining
	if capped {
		autoShare = autoBudget / float64(len(autos))
	}
	for _, i := range autos {
		l := autoLength(tracks[i])
		if capped {
			l = min(l, autoShare)
		}
		lengths[i] = l
		remaining -= l
	}
	remaining = max(0, remaining)

	if remaining > eps {
		switch {
		case len(rels) > 0:
			weights := make([]float64, len(rels))
			for k, i := range rels {
				weights[k] = tracks[i].Value
			}
			distribute(lengths, rels, weights, totalWeight, remaining)
		case capped:
			// the shares add up to the budget, so every Auto track ends at its share
			spreadExact(lengths, autos, autoBudget)
		case len(autos) > 0:
			spread(lengths, autos, remaining)
		case len(fixed) > 0:
			spread(lengths, fixed, remaining)
		default:
			// only zero-weight relative tracks are left
			all := make([]int, len(tracks))
			for i := range all {
				all[i] = i
			}
			spread(lengths, all, remaining)
		}
	}

	res.Extents = make([]Extent, len(tracks))
	var offset float64
	for i, l := range lengths {
		res.Extents[i] = Extent{Offset: offset, Length: l}
		offset += l
	}
	return res
}

// autoLength is the measured length of an Auto track, never negative.
func autoLength(p Policy) float64 {
	if math.IsNaN(p.Value) || p.Value < 0 {
		return 0
	}
	return p.Value
}

// distribute adds amount to lengths[idx] proportionally to weights.
// The last index receives the rounding remainder.
func distribute(lengths []float64, idx []int, weights []float64, total, amount float64) {
	left := amount
	for k, i := range idx {
		if k == len(idx)-1 {
			lengths[i] += left
			return
		}
		part := amount * weights[k] / total
		lengths[i] += part
		left -= part
	}
}

// spread adds amount to lengths[idx] in equal parts.
func spread(lengths []float64, idx []int, amount float64) {
	if len(idx) == 0 {
		return
	}
	weights := make([]float64, len(idx))
	for k := range weights {
		weights[k] = 1
	}
	distribute(lengths, idx, weights, float64(len(idx)), amount)
}

// spreadExact sets lengths[idx] to equal parts of amount.
func spreadExact(lengths []float64, idx []int, amount float64) {
	for _, i := range idx {
		lengths[i] = 0
	}
	spread(lengths, idx, amount)
}
