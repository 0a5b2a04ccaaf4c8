package bfloat16

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shawwn/numpy-half/internal/ftoa"
)

var _ fmt.Formatter = BFloat16(0)

// String returns the shortest decimal representation that parses back to x.
func (x BFloat16) String() string {
	return x.Text('g', -1)
}

// Repr returns x the way the array host prints a scalar, e.g. "bfloat16(1.5)".
func (x BFloat16) Repr() string {
	return "bfloat16(" + x.String() + ")"
}

// Text converts x to a string, according to the format fmt and precision
// prec, with the same meaning as in strconv.FormatFloat. A precision of -1
// uses the smallest number of digits necessary to identify x among all
// BFloat16 values.
func (x BFloat16) Text(fmt byte, prec int) string {
	return string(x.Append(make([]byte, 0, 8), fmt, prec))
}

// Append appends the string form of x, as generated by x.Text, to buf.
func (x BFloat16) Append(buf []byte, fmt byte, prec int) []byte {
	switch {
	case x.IsNaN():
		return append(buf, "NaN"...)
	case x == uvinf:
		return append(buf, "+Inf"...)
	case x == uvneginf:
		return append(buf, "-Inf"...)
	}

	if fmt == 'b' {
		return ftoa.AppendBin(buf, uint16(x), layout)
	}

	// x is exact in float64, so a fixed precision is rounded correctly by strconv.
	v := x.Float64()
	// hex output of the exact value is already the shortest.
	if prec < 0 && fmt != 'x' && fmt != 'X' {
		v = ftoa.Shortest(v, func(p float64) bool { return FromFloat64(p) == x })
	}
	return strconv.AppendFloat(buf, v, fmt, prec, 64)
}

// Format implements [fmt.Formatter].
func (x BFloat16) Format(s fmt.State, verb rune) {
	ftoa.Format(s, verb, "bfloat16", x.IsNaN(), x.Signbit(), func(buf []byte, fmt byte, prec int) []byte {
		if x.IsInf(0) {
			return append(buf, "Inf"...)
		}
		return x.Abs().Append(buf, fmt, prec)
	})
}

// Parse converts the string s to the nearest BFloat16.
//
// It accepts everything strconv.ParseFloat accepts. If s is well-formed but
// its magnitude exceeds MaxValue, Parse returns ±Inf and an error whose Err
// is strconv.ErrRange.
func Parse(s string) (BFloat16, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) {
			return 0, err
		}
		if numErr.Err != strconv.ErrRange {
			return 0, &strconv.NumError{Func: "bfloat16.Parse", Num: s, Err: numErr.Err}
		}
	}
	x := FromFloat64(f)
	if x.IsInf(0) && !math.IsInf(f, 0) || err != nil {
		return x, &strconv.NumError{Func: "bfloat16.Parse", Num: s, Err: strconv.ErrRange}
	}
	return x, nil
}
