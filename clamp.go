package railway

import "golang.org/x/exp/constraints"

// clampComponent is shared by argument-range clamping (Program.SetArgument),
// the Clamp opcode (clampCouple), and RGBA channel normalization
// (unpackColor), rather than re-deriving the same two comparisons at each
// call site.
func clampComponent[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
