// Package fixedunit implements a lossy, order-preserving mapping from a
// real number in [0, 1] to a 32-bit unsigned integer. It is the
// fixed-point pre-stage to zorder.Encode: normalizing a planar point
// into a region yields two FixedUnit values that are then interleaved
// into a single Morton code.
package fixedunit

import "math"

// FixedUnit represents the real number u/(2^32-1) in [0, 1] as a
// 32-bit unsigned integer. Conversion from a float64 is monotone but
// lossy: FromFloat64 preserves ordering for all non-NaN inputs, but
// distinct nearby reals may map to the same encoded value.
type FixedUnit uint32

const maxUint32 = float64(math.MaxUint32) // 4294967295.0

// FromFloat64 converts x into a FixedUnit. NaN is a programmer error
// and panics. Values at or below 0 saturate to 0; values at or above 1
// (including +Inf) saturate to FixedUnit(math.MaxUint32). Values in
// between round down to the nearest representable unit.
func FromFloat64(x float64) FixedUnit {
	if math.IsNaN(x) {
		panic("fixedunit: cannot convert NaN to FixedUnit")
	}
	if x <= 0.0 {
		return 0
	}
	if x >= 1.0 {
		return math.MaxUint32
	}
	return FixedUnit(x * maxUint32)
}

// Float64 returns the real number this FixedUnit represents.
func (u FixedUnit) Float64() float64 {
	return float64(u) / maxUint32
}

// Uint32 returns the raw encoded value.
func (u FixedUnit) Uint32() uint32 {
	return uint32(u)
}
