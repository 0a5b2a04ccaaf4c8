package bfloat16

import "math"

// Add returns the sum of a and b, rounded to nearest even.
func (a BFloat16) Add(b BFloat16) BFloat16 {
	return FromFloat64(a.Float64() + b.Float64())
}

// Sub returns the difference of a and b, rounded to nearest even.
func (a BFloat16) Sub(b BFloat16) BFloat16 {
	return FromFloat64(a.Float64() - b.Float64())
}

// Mul returns the product of a and b, rounded to nearest even.
func (a BFloat16) Mul(b BFloat16) BFloat16 {
	return FromFloat64(a.Float64() * b.Float64())
}

// Quo returns the quotient of a and b, rounded to nearest even.
func (a BFloat16) Quo(b BFloat16) BFloat16 {
	return FromFloat64(a.Float64() / b.Float64())
}

// Sqrt returns the square root of x.
func (x BFloat16) Sqrt() BFloat16 {
	return FromFloat64(math.Sqrt(x.Float64()))
}

// Neg returns -x. Only the sign bit changes.
func (x BFloat16) Neg() BFloat16 {
	return x ^ signMask16
}

// Abs returns the absolute value of x.
func (x BFloat16) Abs() BFloat16 {
	return x &^ signMask16
}

// Copysign returns a value with the magnitude of x and the sign of sign.
func (x BFloat16) Copysign(sign BFloat16) BFloat16 {
	return x&^signMask16 | sign&signMask16
}

// Nextafter returns the next representable value after x towards y.
func (x BFloat16) Nextafter(y BFloat16) BFloat16 {
	return BFloat16(layout.Nextafter(uint16(x), uint16(y)))
}

// Spacing returns the distance between x and the nearest adjacent value
// away from zero, with the sign of x.
func (x BFloat16) Spacing() BFloat16 {
	return BFloat16(layout.Spacing(uint16(x)))
}

// Eq reports whether a == b. NaN is not equal to anything and -0 == +0.
func (a BFloat16) Eq(b BFloat16) bool { return a.Float32() == b.Float32() }

// Ne reports whether a != b. It is true whenever either operand is NaN.
func (a BFloat16) Ne(b BFloat16) bool { return a.Float32() != b.Float32() }

// Lt reports whether a < b.
func (a BFloat16) Lt(b BFloat16) bool { return a.Float32() < b.Float32() }

// Le reports whether a <= b.
func (a BFloat16) Le(b BFloat16) bool { return a.Float32() <= b.Float32() }

// Gt reports whether a > b.
func (a BFloat16) Gt(b BFloat16) bool { return a.Float32() > b.Float32() }

// Ge reports whether a >= b.
func (a BFloat16) Ge(b BFloat16) bool { return a.Float32() >= b.Float32() }

// Compare compares a and b and returns -1, 0 or +1.
// NaNs sort before every other value and compare equal to each other;
// -0 and +0 are equal.
func (a BFloat16) Compare(b BFloat16) int {
	aNaN, bNaN := a.IsNaN(), b.IsNaN()
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	}

	ia := int16(a) ^ ((int16(a) >> 15) & 0x7fff)
	ia += int16(a >> 15)
	ib := int16(b) ^ ((int16(b) >> 15) & 0x7fff)
	ib += int16(b >> 15)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	}
	return 0
}
