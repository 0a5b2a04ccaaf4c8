package xfloat16

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"

	"github.com/shogo82148/int128"

	"github.com/shawwn/numpy-half/internal/ftoa"
)

var _ fmt.Formatter = Float16(0)

// String returns the shortest decimal representation that parses back to x.
func (x Float16) String() string {
	return x.Text('g', -1)
}

// Repr returns x the way the array host prints a scalar, e.g. "xfloat16(1.5)".
func (x Float16) Repr() string {
	return "xfloat16(" + x.String() + ")"
}

// Text converts x to a string, according to the format fmt and precision
// prec, with the same meaning as in strconv.FormatFloat. A precision of -1
// uses the smallest number of digits necessary to identify x among all
// Float16 values.
func (x Float16) Text(fmt byte, prec int) string {
	return string(x.Append(make([]byte, 0, 8), fmt, prec))
}

// Append appends the string form of x, as generated by x.Text, to buf.
func (x Float16) Append(buf []byte, fmt byte, prec int) []byte {
	switch {
	case x.IsNaN():
		return append(buf, "NaN"...)
	case x == uvinf:
		return append(buf, "+Inf"...)
	case x == uvneginf:
		return append(buf, "-Inf"...)
	}

	switch fmt {
	case 'b':
		return ftoa.AppendBin(buf, uint16(x), layout)
	case 'f':
		if prec >= 0 {
			return x.appendDec(buf, prec)
		}
	}

	v := x.Float64()
	// hex output of the exact value is already the shortest.
	if prec < 0 && fmt != 'x' && fmt != 'X' {
		v = ftoa.Shortest(v, func(p float64) bool { return FromFloat64(p) == x })
	}
	return strconv.AppendFloat(buf, v, fmt, prec, 64)
}

// appendDec appends x in the 'f' format with exactly prec fractional digits.
// x is scaled by 10^24 to an integer, every Float16 is exact at that scale.
func (x Float16) appendDec(buf []byte, prec int) []byte {
	ten := int128.Uint128{L: 10}

	// sign
	if x&signMask16 != 0 {
		buf = append(buf, '-')
		x &^= signMask16
	}

	const five24 = 59604644775390625 // = 5^24

	var dec24 int128.Uint128
	dec24.H, dec24.L = bits.Mul64(x.fix24(), five24)

	// round to nearest even
	if prec < 24 {
		n := int128.Uint128{L: 1}
		for i := 0; i < 24-prec; i++ {
			n = n.Mul(ten)
		}
		n2 := n.Rsh(1)
		div, mod := dec24.DivMod(n)
		dec24 = dec24.Sub(mod)
		if cmp := mod.Cmp(n2); cmp > 0 || cmp == 0 && div.L&1 != 0 {
			dec24 = dec24.Add(n)
		}
	}

	// convert to decimal
	var data [24]byte
	for i := range data {
		var mod int128.Uint128
		dec24, mod = dec24.DivMod(ten)
		data[i] = byte(mod.L)
	}

	// integer part
	buf = strconv.AppendUint(buf, dec24.L, 10)
	if prec == 0 {
		return buf
	}

	// fractional part
	buf = append(buf, '.')
	var i int
	for i = 0; i < prec && i < len(data); i++ {
		buf = append(buf, data[len(data)-1-i]+'0')
	}
	for ; i < prec; i++ {
		buf = append(buf, '0')
	}
	return buf
}

// fix24 returns |x| * 2^24, which is an integer for every finite Float16.
func (x Float16) fix24() uint64 {
	exp := uint64(x>>shift16) & mask16
	frac := uint64(x & fracMask16)
	if exp == 0 {
		// subnormal number
		return frac
	}
	// normal number
	return (frac | 1<<shift16) << (exp - 1)
}

// Format implements [fmt.Formatter].
func (x Float16) Format(s fmt.State, verb rune) {
	ftoa.Format(s, verb, "xfloat16", x.IsNaN(), x.Signbit(), func(buf []byte, fmt byte, prec int) []byte {
		if x.IsInf(0) {
			return append(buf, "Inf"...)
		}
		return x.Abs().Append(buf, fmt, prec)
	})
}

// Parse converts the string s to the nearest Float16.
//
// It accepts everything strconv.ParseFloat accepts. If s is well-formed but
// its magnitude exceeds MaxValue, Parse returns ±Inf and an error whose Err
// is strconv.ErrRange.
func Parse(s string) (Float16, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) {
			return 0, err
		}
		if numErr.Err != strconv.ErrRange {
			return 0, &strconv.NumError{Func: "xfloat16.Parse", Num: s, Err: numErr.Err}
		}
	}
	x := FromFloat64(f)
	if x.IsInf(0) && !math.IsInf(f, 0) || err != nil {
		return x, &strconv.NumError{Func: "xfloat16.Parse", Num: s, Err: strconv.ErrRange}
	}
	return x, nil
}
