package xfloat16

import "math"

// Add returns the sum of a and b, rounded to nearest even.
func (a Float16) Add(b Float16) Float16 {
	return FromFloat64(a.Float64() + b.Float64())
}

// Sub returns the difference of a and b, rounded to nearest even.
func (a Float16) Sub(b Float16) Float16 {
	return FromFloat64(a.Float64() - b.Float64())
}

// Mul returns the product of a and b, rounded to nearest even.
func (a Float16) Mul(b Float16) Float16 {
	return FromFloat64(a.Float64() * b.Float64())
}

// Quo returns the quotient of a and b, rounded to nearest even.
//
// Special cases are:
//
//	Quo(±x, ±0) = ±Inf for x != 0, with the sign of the quotient
//	Quo(±0, ±0) = NaN
func (a Float16) Quo(b Float16) Float16 {
	return FromFloat64(a.Float64() / b.Float64())
}

// Sqrt returns the square root of x.
//
// Special cases are:
//
//	Sqrt(+Inf) = +Inf
//	Sqrt(±0) = ±0
//	Sqrt(x < 0) = NaN
//	Sqrt(NaN) = NaN
func (x Float16) Sqrt() Float16 {
	return FromFloat64(math.Sqrt(x.Float64()))
}

// Neg returns -x. Only the sign bit changes, so Neg(NaN) is a NaN.
func (x Float16) Neg() Float16 {
	return x ^ signMask16
}

// Abs returns the absolute value of x.
func (x Float16) Abs() Float16 {
	return x &^ signMask16
}

// Copysign returns a value with the magnitude of x and the sign of sign.
func (x Float16) Copysign(sign Float16) Float16 {
	return x&^signMask16 | sign&signMask16
}

// Nextafter returns the next representable value after x towards y.
func (x Float16) Nextafter(y Float16) Float16 {
	return Float16(layout.Nextafter(uint16(x), uint16(y)))
}

// Spacing returns the distance between x and the nearest adjacent value
// away from zero, with the sign of x. It is NaN for infinities, NaN and
// ±MaxValue.
func (x Float16) Spacing() Float16 {
	return Float16(layout.Spacing(uint16(x)))
}

// Eq reports whether a == b. NaN is not equal to anything and -0 == +0.
func (a Float16) Eq(b Float16) bool {
	return a.Float64() == b.Float64()
}

// Ne reports whether a != b. It is true whenever either operand is NaN.
func (a Float16) Ne(b Float16) bool {
	return a.Float64() != b.Float64()
}

// Lt reports whether a < b.
func (a Float16) Lt(b Float16) bool {
	return a.Float64() < b.Float64()
}

// Le reports whether a <= b.
func (a Float16) Le(b Float16) bool {
	return a.Float64() <= b.Float64()
}

// Gt reports whether a > b.
func (a Float16) Gt(b Float16) bool {
	return a.Float64() > b.Float64()
}

// Ge reports whether a >= b.
func (a Float16) Ge(b Float16) bool {
	return a.Float64() >= b.Float64()
}

// Compare compares a and b and returns:
//
//	-1 if a <  b
//	 0 if a == b (incl. -0 == 0, -Inf == -Inf, and +Inf == +Inf)
//	+1 if a >  b
//
// a NaN is considered less than any non-NaN, and two NaNs are equal.
func (a Float16) Compare(b Float16) int {
	aNaN := a.IsNaN()
	bNaN := b.IsNaN()
	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return -1
	}
	if bNaN {
		return 1
	}

	// map sign-magnitude onto two's complement; -0 and +0 both become 0.
	ia := int16(a) ^ ((int16(a) >> 15) & 0x7fff)
	ia += int16(a >> 15)
	ib := int16(b) ^ ((int16(b) >> 15) & 0x7fff)
	ib += int16(b >> 15)
	if ia < ib {
		return -1
	}
	if ia > ib {
		return 1
	}
	return 0
}
