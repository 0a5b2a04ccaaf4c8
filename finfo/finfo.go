// Package finfo describes the numeric limits of the 16-bit formats, the
// way the array host's finfo records describe its builtin float types.
//
// Every limit is derived from the exponent and mantissa widths; nothing is
// measured at run time.
package finfo

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/shawwn/numpy-half/internal/binary16"
)

// strFormat renders the display strings of a record.
const strFormat = "%12.4e"

// Info is the limits record of one format. It is immutable once built.
type Info struct {
	Name string

	Bits       int     // storage width
	Precision  int     // decimal digits of precision, floor(nmant * log10(2))
	Resolution float64 // 10^-Precision

	Eps    float64 // 2^MachEp, the gap between 1 and the next larger value
	EpsNeg float64 // 2^NegEp, the gap between 1 and the next smaller value
	Max    float64 // largest finite value
	Min    float64 // -Max
	Tiny   float64 // smallest positive normal value

	// SmallestSubnormal is the smallest positive value, 2^(MinExp-NMant).
	SmallestSubnormal float64

	MachEp int
	NegEp  int
	MinExp int // exponent of Tiny
	MaxExp int // first power of two that overflows
	NExp   int
	NMant  int
	IExp   int

	// Storage holds each limit as a pattern of the format itself.
	Storage Storage

	StrEps        string
	StrEpsNeg     string
	StrMax        string
	StrMin        string
	StrTiny       string
	StrResolution string
}

// Storage is the set of limits encoded in the format they describe.
type Storage struct {
	Eps               uint16
	EpsNeg            uint16
	Max               uint16
	Min               uint16
	Tiny              uint16
	Resolution        uint16
	SmallestSubnormal uint16
}

// New derives the limits record of the format with layout l.
func New(name string, l binary16.Layout) *Info {
	mant := l.MantBits
	precision := int(math.Floor(float64(mant) * math.Log10(2)))

	info := &Info{
		Name:       name,
		Bits:       16,
		Precision:  precision,
		Resolution: math.Pow10(-precision),

		Eps:    math.Ldexp(1, -mant),
		EpsNeg: math.Ldexp(1, -mant-1),
		Max:    l.MaxFloat64(),
		Min:    -l.MaxFloat64(),
		Tiny:   math.Ldexp(1, l.MinExp()),

		SmallestSubnormal: math.Ldexp(1, l.MinExp()-mant),

		MachEp: -mant,
		NegEp:  -mant - 1,
		MinExp: l.MinExp(),
		MaxExp: l.MaxExp() + 1,
		NExp:   l.ExpBits,
		NMant:  mant,
		IExp:   l.ExpBits,
	}

	info.Storage = Storage{
		Eps:               l.Encode(info.Eps),
		EpsNeg:            l.Encode(info.EpsNeg),
		Max:               l.Max(),
		Min:               l.Max() | binary16.SignMask,
		Tiny:              l.Encode(info.Tiny),
		Resolution:        l.Encode(info.Resolution),
		SmallestSubnormal: 1,
	}

	info.StrEps = fmt.Sprintf(strFormat, info.Eps)
	info.StrEpsNeg = fmt.Sprintf(strFormat, info.EpsNeg)
	info.StrMax = fmt.Sprintf(strFormat, info.Max)
	info.StrMin = fmt.Sprintf(strFormat, info.Min)
	info.StrTiny = fmt.Sprintf(strFormat, info.Tiny)
	info.StrResolution = fmt.Sprintf(strFormat, info.Resolution)
	return info
}

// BFloat16 returns the process-wide limits record of bfloat16.
var BFloat16 = sync.OnceValue(func() *Info {
	return New("bfloat16", binary16.Brain)
})

// XFloat16 returns the process-wide limits record of xfloat16.
var XFloat16 = sync.OnceValue(func() *Info {
	return New("xfloat16", binary16.Half)
})

// Fields returns the record keyed by the attribute names the host uses
// for its own finfo objects.
func (info *Info) Fields() map[string]any {
	return map[string]any{
		"dtype":              info.Name,
		"bits":               info.Bits,
		"precision":          info.Precision,
		"resolution":         info.Resolution,
		"eps":                info.Eps,
		"epsneg":             info.EpsNeg,
		"max":                info.Max,
		"min":                info.Min,
		"tiny":               info.Tiny,
		"smallest_normal":    info.Tiny,
		"smallest_subnormal": info.SmallestSubnormal,
		"machep":             info.MachEp,
		"negep":              info.NegEp,
		"minexp":             info.MinExp,
		"maxexp":             info.MaxExp,
		"nexp":               info.NExp,
		"nmant":              info.NMant,
		"iexp":               info.IExp,
		"_str_eps":           info.StrEps,
		"_str_epsneg":        info.StrEpsNeg,
		"_str_max":           info.StrMax,
		"_str_tiny":          info.StrTiny,
		"_str_resolution":    info.StrResolution,
	}
}

// String summarizes the record in the layout of the host's finfo repr.
func (info *Info) String() string {
	return fmt.Sprintf("finfo(resolution=%g, min=%s, max=%s, dtype=%s)",
		info.Resolution, strings.TrimSpace(info.StrMin), strings.TrimSpace(info.StrMax), info.Name)
}
