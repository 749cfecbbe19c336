package dsp

// Sample is the set of element types the generic kernels operate on.
type Sample interface {
	~int16 | ~int32 | ~int64 | ~int
}

// ClipRange is the valid output interval [0, 2^BitDepth-1] for one
// component. It is passed by value to every kernel that can overflow.
type ClipRange struct {
	BitDepth int
}

// Min returns the lower bound of the range, always 0.
func (c ClipRange) Min() int { return 0 }

// Max returns the upper bound of the range.
func (c ClipRange) Max() int { return (1 << c.BitDepth) - 1 }

// Clip3 clamps v to [lo, hi].
func Clip3(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClipPel clamps v to the clip range. The unsigned comparison keeps the
// in-range case to a single branch.
func ClipPel(v int, clp ClipRange) int {
	hi := (1 << clp.BitDepth) - 1
	if uint(v) <= uint(hi) {
		return v
	}
	if v < 0 {
		return 0
	}
	return hi
}

// clipTo clamps v to [0, hi] and converts to the sample type.
func clipTo[T Sample](v, hi int) T {
	if uint(v) <= uint(hi) {
		return T(v)
	}
	if v < 0 {
		return 0
	}
	return T(hi)
}

// RoundShift returns (v + 2^(shift-1)) >> shift, or v when shift is zero.
func RoundShift(v int, shift uint) int {
	if shift == 0 {
		return v
	}
	return (v + (1 << (shift - 1))) >> shift
}
