// Package ftoa renders 16-bit floating-point values as text.
package ftoa

import (
	"fmt"
	"strconv"

	"github.com/shawwn/numpy-half/internal/binary16"
)

// Shortest returns the float64 nearest to the shortest decimal string that
// identifies v, where same reports whether a parsed value is identified
// with v. Formatting the result with precision -1 prints exactly those
// digits.
func Shortest(v float64, same func(float64) bool) float64 {
	for prec := 0; prec < 16; prec++ {
		p, err := strconv.ParseFloat(strconv.FormatFloat(v, 'e', prec, 64), 64)
		if err == nil && same(p) {
			return p
		}
	}
	return v
}

// AppendBin appends the format-native binary form of h, a decimal mantissa
// and a binary exponent like "1024p-10", as strconv does for 'b'.
func AppendBin(buf []byte, h uint16, l binary16.Layout) []byte {
	if h&binary16.SignMask != 0 {
		buf = append(buf, '-')
	}
	exp := int(h>>l.MantBits)&(1<<l.ExpBits-1) - l.Bias()
	frac := uint64(h & l.FracMask())

	if exp == -l.Bias() {
		exp++
	} else {
		frac |= 1 << l.MantBits
	}
	exp -= l.MantBits

	buf = strconv.AppendUint(buf, frac, 10)
	buf = append(buf, 'p')
	if exp >= 0 {
		buf = append(buf, '+')
	}
	return strconv.AppendInt(buf, int64(exp), 10)
}

// Format implements fmt.Formatter for a 16-bit value. appendAbs renders the
// magnitude, the sign is written here so that the '+' and ' ' flags and
// the width apply uniformly.
func Format(s fmt.State, verb rune, name string, nan, neg bool, appendAbs func(buf []byte, fmt byte, prec int) []byte) {
	if nan {
		s.Write([]byte("NaN"))
		return
	}

	var prefix []byte
	var data []byte

	// sign
	if neg {
		prefix = append(prefix, '-')
	} else {
		if s.Flag('+') {
			prefix = append(prefix, '+')
		} else if s.Flag(' ') {
			prefix = append(prefix, ' ')
		}
	}

	switch verb {
	case 'b', 'e', 'E', 'f', 'F', 'g', 'G', 'x', 'X':
		prec, ok := s.Precision()
		if !ok {
			prec = -1
		}
		if verb == 'F' {
			verb = 'f'
		}
		data = appendAbs(data, byte(verb), prec)
	case 'v':
		data = appendAbs(data, 'g', -1)
	default:
		fmt.Fprintf(s, "%%!%c(%s=", verb, name)
		s.Write(prefix)
		s.Write(appendAbs(nil, 'g', -1))
		s.Write([]byte(")"))
		return
	}

	if w, ok := s.Width(); ok {
		pad := w - len(prefix) - len(data)
		if s.Flag('-') {
			s.Write(prefix)
			s.Write(data)
			writePadding(s, ' ', pad)
		} else if s.Flag('0') {
			s.Write(prefix)
			writePadding(s, '0', pad)
			s.Write(data)
		} else {
			writePadding(s, ' ', pad)
			s.Write(prefix)
			s.Write(data)
		}
		return
	}

	if len(prefix) > 0 {
		s.Write(prefix)
	}
	s.Write(data)
}

func writePadding(s fmt.State, c byte, n int) {
	buf := [1]byte{c}
	for i := 0; i < n; i++ {
		s.Write(buf[:])
	}
}
