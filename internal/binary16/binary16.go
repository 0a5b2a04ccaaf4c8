// Package binary16 implements the bit-level codec shared by the 16-bit
// floating-point formats. A Layout is a sign bit followed by ExpBits exponent
// bits and MantBits mantissa bits, interpreted with the usual IEEE 754 rules
// scaled to that exponent width.
package binary16

import (
	"math"
	"math/bits"
)

// SignMask selects the sign bit of every layout.
const SignMask = 0x8000

// Layout describes the field widths of a 16-bit floating-point format.
// ExpBits+MantBits must be 15.
type Layout struct {
	ExpBits  int
	MantBits int
}

var (
	// Half is the IEEE 754 binary16 layout.
	Half = Layout{ExpBits: 5, MantBits: 10}

	// Brain is the bfloat16 layout, the upper half of an IEEE 754 binary32.
	Brain = Layout{ExpBits: 8, MantBits: 7}
)

// Bias returns the exponent bias.
func (l Layout) Bias() int {
	return 1<<(l.ExpBits-1) - 1
}

// MinExp returns the unbiased exponent of the smallest normal number.
func (l Layout) MinExp() int {
	return 1 - l.Bias()
}

// MaxExp returns the unbiased exponent of the largest finite number.
func (l Layout) MaxExp() int {
	return l.Bias()
}

// ExpMask selects the exponent field.
func (l Layout) ExpMask() uint16 {
	return uint16(1<<l.ExpBits-1) << l.MantBits
}

// FracMask selects the mantissa field.
func (l Layout) FracMask() uint16 {
	return 1<<l.MantBits - 1
}

// Inf returns the positive infinity pattern.
func (l Layout) Inf() uint16 {
	return l.ExpMask()
}

// NaN returns the canonical quiet NaN pattern.
func (l Layout) NaN() uint16 {
	return l.ExpMask() | 1<<(l.MantBits-1)
}

// Max returns the pattern of the largest finite value.
func (l Layout) Max() uint16 {
	return l.ExpMask() - 1
}

// MaxFloat64 returns the largest finite value, (2 - 2^-MantBits) * 2^MaxExp.
func (l Layout) MaxFloat64() float64 {
	return math.Float64frombits(l.maxBits64())
}

func (l Layout) maxBits64() uint64 {
	return uint64(l.MaxExp()+1023)<<52 | uint64(l.FracMask())<<(52-l.MantBits)
}

// Class is the IEEE classification of a bit pattern.
type Class int

const (
	Zero Class = iota
	Subnormal
	Normal
	Infinite
	NotANumber
)

func (c Class) String() string {
	switch c {
	case Zero:
		return "zero"
	case Subnormal:
		return "subnormal"
	case Normal:
		return "normal"
	case Infinite:
		return "infinite"
	case NotANumber:
		return "nan"
	}
	return "invalid"
}

// Classify reports the class of h.
func (l Layout) Classify(h uint16) Class {
	exp := h & l.ExpMask()
	frac := h & l.FracMask()
	switch {
	case exp == 0 && frac == 0:
		return Zero
	case exp == 0:
		return Subnormal
	case exp == l.ExpMask() && frac == 0:
		return Infinite
	case exp == l.ExpMask():
		return NotANumber
	}
	return Normal
}

// IsNaN reports whether h is a NaN pattern.
func (l Layout) IsNaN(h uint16) bool {
	return h&l.ExpMask() == l.ExpMask() && h&l.FracMask() != 0
}

// Decode returns the float64 value of h. Every pattern decodes exactly.
func (l Layout) Decode(h uint16) float64 {
	sign := uint64(h&SignMask) << 48
	exp := int(h>>l.MantBits) & (1<<l.ExpBits - 1)
	frac := uint64(h & l.FracMask())

	switch {
	case exp == 0:
		if frac == 0 {
			return math.Float64frombits(sign)
		}
		// subnormal number; the leading one becomes the implicit bit
		n := bits.Len64(frac)
		frac = (frac << (l.MantBits - n + 1)) & uint64(l.FracMask())
		exp = n - l.MantBits - l.Bias()
		return math.Float64frombits(sign | uint64(exp+1023)<<52 | frac<<(52-l.MantBits))
	case exp == 1<<l.ExpBits-1:
		// infinity or NaN
		return math.Float64frombits(sign | 0x7ff<<52 | frac<<(52-l.MantBits))
	}
	// normal number
	return math.Float64frombits(sign | uint64(exp-l.Bias()+1023)<<52 | frac<<(52-l.MantBits))
}

// Encode returns the pattern nearest to x.
//
// NaN becomes the canonical NaN, magnitudes above MaxFloat64 become
// infinity, everything else is rounded once to nearest even.
func (l Layout) Encode(x float64) uint16 {
	b := math.Float64bits(x)
	sign := uint16(b>>48) & SignMask
	exp := int(b>>52) & 0x7ff
	frac := b & (1<<52 - 1)

	switch {
	case exp == 0x7ff:
		if frac != 0 {
			return l.NaN()
		}
		return sign | l.Inf()
	case exp == 0:
		// zero or a float64 subnormal, both far below the smallest subnormal
		return sign
	case b&^(1<<63) > l.maxBits64():
		// overflow
		return sign | l.Inf()
	}

	mant := frac | 1<<52
	e := exp - 1023 + l.Bias() // biased exponent of the result
	if e >= 1 {
		// normal number
		m := roundShift(mant, 52-l.MantBits)
		if m>>(l.MantBits+1) != 0 {
			// rounding carried into the next binade
			m >>= 1
			e++
		}
		return sign | uint16(e)<<l.MantBits | uint16(m)&l.FracMask()
	}

	// subnormal number, in units of the smallest subnormal.
	// a carry out of the mantissa lands on the smallest normal number.
	shift := 52 - l.MantBits + 1 - e
	if shift > 53 {
		// underflow
		return sign
	}
	return sign | uint16(roundShift(mant, shift))
}

// roundShift returns m >> shift rounded to nearest even.
func roundShift(m uint64, shift int) uint64 {
	q := m >> shift
	rem := m & (1<<shift - 1)
	half := uint64(1) << (shift - 1)
	if rem > half || rem == half && q&1 != 0 {
		q++
	}
	return q
}

// Nextafter returns the next representable value after x towards y.
//
// Special cases are:
//
//	Nextafter(x, x) = x
//	Nextafter(NaN, y) = NaN
//	Nextafter(x, NaN) = NaN
func (l Layout) Nextafter(x, y uint16) uint16 {
	fx, fy := l.Decode(x), l.Decode(y)
	switch {
	case math.IsNaN(fx) || math.IsNaN(fy):
		return l.NaN()
	case fx == fy:
		return x
	case fx == 0:
		return y&SignMask | 1
	case (fy > fx) == (fx > 0):
		return x + 1
	}
	return x - 1
}

// Spacing returns the distance between x and the adjacent value away from
// zero, with the sign of x. It is NaN when x is not finite or when the
// adjacent value would be infinite.
func (l Layout) Spacing(x uint16) uint16 {
	if l.Classify(x) >= Infinite || x&^SignMask == l.Max() {
		return l.NaN()
	}
	next := l.Nextafter(x, x&SignMask|l.Inf())
	return l.Encode(l.Decode(next) - l.Decode(x))
}
