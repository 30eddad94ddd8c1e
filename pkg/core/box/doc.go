// Package box implements the one-dimensional track sizing used by scene grids.
//
// # Overview
//
// A grid axis is an ordered sequence of tracks (rows or columns). Each track
// carries a sizing [Policy]:
//
//   - [Fixed] tracks always get exactly their length
//   - [Auto] tracks get the preferred length measured from their content
//   - [Relative] tracks share whatever length is left, proportional to weight
//
// [ResolveTracks] turns a policy sequence and an available length into
// concrete [Extent] values (offset and length). The output lengths always sum
// to the available length, or to the sum of Fixed lengths when those alone
// exceed it. Offsets start at zero and leave no gaps.
//
// # Overflow
//
// When Fixed and Auto demand exceeds the available length the result is
// still well defined: Fixed tracks keep their length, and no Auto track gets
// more than an equal share of what remains. Requests below the share are
// honored in full and the rest goes to Relative tracks, or back to the Auto
// tracks when there are none. [Resolve] reports the excess as
// [Resolution.Overflow] so callers can log it; it is not an error.
//
// # Determinism
//
// Resolution never iterates maps. Equal shares are handed out in ascending
// track order and the last absorbing track receives the rounding remainder,
// so identical inputs always produce identical outputs.
package box
