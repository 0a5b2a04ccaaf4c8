// Package bfloat16 implements the brain floating-point format: the upper
// 16 bits of an IEEE 754 binary32 (1 sign bit, 8 exponent bits, 7 mantissa
// bits). It trades precision for the full float32 range.
package bfloat16

import (
	"math"

	"github.com/shawwn/numpy-half/internal/binary16"
)

// BFloat16 is a brain floating-point value, represented by its bits.
type BFloat16 uint16

const (
	signMask16 = 0x8000
	fracMask16 = 0x7f

	uvnan    = 0x7fc0
	uvinf    = 0x7f80
	uvneginf = 0xff80
	uvmax    = 0x7f7f
)

const (
	// SmallestNonzero is the smallest positive subnormal value, 2^-133.
	SmallestNonzero BFloat16 = 0x0001

	// SmallestNormal is the smallest positive normal value, 2^-126.
	SmallestNormal BFloat16 = 0x0080

	// MaxValue is the largest finite value, (2 - 2^-7) * 2^127.
	MaxValue BFloat16 = uvmax
)

var layout = binary16.Brain

// FromBits returns the BFloat16 with the given binary representation.
func FromBits(b uint16) BFloat16 {
	return BFloat16(b)
}

// Bits returns the binary representation of f.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// FromFloat32 returns the BFloat16 nearest to f, rounding to nearest even.
// Truncating the low half of f is not enough: 1+2^-8+2^-23 must round up.
func FromFloat32(f float32) BFloat16 {
	return BFloat16(layout.Encode(float64(f)))
}

// FromFloat64 returns the BFloat16 nearest to f.
// Magnitudes above MaxValue become infinities and NaN becomes the
// canonical NaN.
func FromFloat64(f float64) BFloat16 {
	return BFloat16(layout.Encode(f))
}

// Float32 returns the float32 representation of f. It is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// Float64 returns the float64 representation of f.
func (f BFloat16) Float64() float64 {
	return layout.Decode(uint16(f))
}

// NaN returns the canonical "not-a-number" value.
func NaN() BFloat16 {
	return uvnan
}

// Inf returns positive infinity if sign >= 0, negative infinity if sign < 0.
func Inf(sign int) BFloat16 {
	if sign >= 0 {
		return uvinf
	}
	return uvneginf
}

// IsNaN reports whether f is a "not-a-number" value.
func (f BFloat16) IsNaN() bool {
	return f&uvinf == uvinf && f&fracMask16 != 0
}

// IsInf reports whether f is an infinity, according to sign.
func (f BFloat16) IsInf(sign int) bool {
	return sign >= 0 && f == uvinf || sign <= 0 && f == uvneginf
}

// IsFinite reports whether f is neither NaN nor an infinity.
func (f BFloat16) IsFinite() bool {
	return f&uvinf != uvinf
}

// IsZero reports whether f is +0 or -0.
func (f BFloat16) IsZero() bool {
	return f&^signMask16 == 0
}

// Signbit reports whether f is negative or negative zero.
func (f BFloat16) Signbit() bool {
	return f&signMask16 != 0
}
