// Package xfloat16 implements the IEEE 754 half-precision format
// (binary16: 1 sign bit, 5 exponent bits, 10 mantissa bits).
//
// A Float16 is its own storage: the raw 16-bit pattern. Arithmetic decodes
// the operands to float64, operates there and rounds the result once.
package xfloat16

import (
	"math"
	"math/bits"

	"github.com/shawwn/numpy-half/internal/binary16"
)

// Float16 is an IEEE 754 binary16 value, represented by its bits.
type Float16 uint16

const (
	signMask16 = 0x8000
	shift16    = 10
	mask16     = 0x1f
	bias16     = 15
	fracMask16 = 0x3ff

	uvnan    = 0x7e00
	uvinf    = 0x7c00
	uvneginf = 0xfc00
	uvmax    = 0x7bff
)

const (
	// SmallestNonzero is the smallest positive subnormal value, 2^-24.
	SmallestNonzero Float16 = 0x0001

	// SmallestNormal is the smallest positive normal value, 2^-14.
	SmallestNormal Float16 = 0x0400

	// MaxValue is the largest finite value, 65504.
	MaxValue Float16 = uvmax
)

var layout = binary16.Half

// FromBits returns the Float16 with the given IEEE 754 binary representation.
func FromBits(b uint16) Float16 {
	return Float16(b)
}

// Bits returns the IEEE 754 binary representation of f.
func (f Float16) Bits() uint16 {
	return uint16(f)
}

// FromFloat32 returns the Float16 nearest to f.
func FromFloat32(f float32) Float16 {
	return Float16(layout.Encode(float64(f)))
}

// FromFloat64 returns the Float16 nearest to f.
// Magnitudes above MaxValue become infinities and NaN becomes the
// canonical NaN.
func FromFloat64(f float64) Float16 {
	return Float16(layout.Encode(f))
}

// Float32 returns the float32 representation of f.
func (f Float16) Float32() float32 {
	sign := uint32(f&signMask16) << 16
	exp := uint32(f>>shift16) & mask16
	mant := uint32(f & fracMask16)

	if exp == 0 {
		if mant != 0 {
			// subnormal number
			l := bits.Len32(mant)
			mant = (mant << (shift16 - l + 1)) & fracMask16
			exp = uint32(127 - 25 + l)
		}
	} else if exp == mask16 {
		// infinity or NaN
		exp = 255
	} else {
		// normal number
		exp += 127 - bias16
	}
	return math.Float32frombits(sign | (exp << 23) | (mant << (23 - shift16)))
}

// Float64 returns the float64 representation of f.
func (f Float16) Float64() float64 {
	return layout.Decode(uint16(f))
}

// NaN returns the canonical IEEE 754 "not-a-number" value.
func NaN() Float16 {
	return uvnan
}

// Inf returns positive infinity if sign >= 0, negative infinity if sign < 0.
func Inf(sign int) Float16 {
	if sign >= 0 {
		return uvinf
	}
	return uvneginf
}

// IsNaN reports whether f is an IEEE 754 "not-a-number" value.
func (f Float16) IsNaN() bool {
	return f&uvinf == uvinf && f&fracMask16 != 0
}

// IsInf reports whether f is an infinity, according to sign.
// If sign > 0, IsInf reports whether f is positive infinity.
// If sign < 0, IsInf reports whether f is negative infinity.
// If sign == 0, IsInf reports whether f is either infinity.
func (f Float16) IsInf(sign int) bool {
	return sign >= 0 && f == uvinf || sign <= 0 && f == uvneginf
}

// IsFinite reports whether f is neither NaN nor an infinity.
func (f Float16) IsFinite() bool {
	return f&uvinf != uvinf
}

// IsZero reports whether f is +0 or -0.
func (f Float16) IsZero() bool {
	return f&^signMask16 == 0
}

// Signbit reports whether f is negative or negative zero.
func (f Float16) Signbit() bool {
	return f&signMask16 != 0
}
