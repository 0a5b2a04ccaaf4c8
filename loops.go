package half

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/shawwn/numpy-half/dtype"
)

// scalar is the method set shared by bfloat16.BFloat16 and xfloat16.Float16.
type scalar[T any] interface {
	~uint16

	Float32() float32
	Float64() float64
	IsNaN() bool
	String() string
	Repr() string

	Add(T) T
	Sub(T) T
	Mul(T) T
	Quo(T) T
	Copysign(T) T
	Nextafter(T) T
	Sqrt() T
	Neg() T
	Abs() T
	Spacing() T

	Eq(T) bool
	Ne(T) bool
	Lt(T) bool
	Le(T) bool
	Gt(T) bool
	Ge(T) bool
	Compare(T) int
}

func binaryLoop[T scalar[T]](op func(a, b T) T) dtype.BinaryLoop {
	return func(x, y, out []uint16) {
		for i := range out {
			out[i] = uint16(op(T(x[i]), T(y[i])))
		}
	}
}

func unary[T scalar[T]](op func(a T) T) dtype.UnaryLoop {
	return func(x, out []uint16) {
		for i := range out {
			out[i] = uint16(op(T(x[i])))
		}
	}
}

func compare[T scalar[T]](op func(a, b T) bool) dtype.CompareLoop {
	return func(x, y []uint16, out []bool) {
		for i := range out {
			out[i] = op(T(x[i]), T(y[i]))
		}
	}
}

func loops[T scalar[T]]() map[string]dtype.Loop {
	divide := binaryLoop(func(a, b T) T { return a.Quo(b) })
	return map[string]dtype.Loop{
		"add":         binaryLoop(func(a, b T) T { return a.Add(b) }),
		"subtract":    binaryLoop(func(a, b T) T { return a.Sub(b) }),
		"multiply":    binaryLoop(func(a, b T) T { return a.Mul(b) }),
		"divide":      divide,
		"true_divide": divide,
		"copysign":    binaryLoop(func(a, b T) T { return a.Copysign(b) }),
		"nextafter":   binaryLoop(func(a, b T) T { return a.Nextafter(b) }),

		"negative": unary(func(a T) T { return a.Neg() }),
		"absolute": unary(func(a T) T { return a.Abs() }),
		"sqrt":     unary(func(a T) T { return a.Sqrt() }),
		"spacing":  unary(func(a T) T { return a.Spacing() }),

		"equal":         compare(func(a, b T) bool { return a.Eq(b) }),
		"not_equal":     compare(func(a, b T) bool { return a.Ne(b) }),
		"less":          compare(func(a, b T) bool { return a.Lt(b) }),
		"less_equal":    compare(func(a, b T) bool { return a.Le(b) }),
		"greater":       compare(func(a, b T) bool { return a.Gt(b) }),
		"greater_equal": compare(func(a, b T) bool { return a.Ge(b) }),
	}
}

func arrFuncs[T scalar[T]](fromFloat32 func(float32) T, fromFloat64 func(float64) T) *dtype.ArrFuncs {
	return &dtype.ArrFuncs{
		GetItem: func(v uint16) float64 {
			return T(v).Float64()
		},
		SetItem: func(f float64) uint16 {
			return uint16(fromFloat64(f))
		},
		Compare: func(a, b uint16) int {
			return T(a).Compare(T(b))
		},
		ArgMax: func(x []uint16) int {
			if len(x) == 0 {
				return -1
			}
			var idx int
			mp := T(x[0])
			if mp.IsNaN() {
				// nan encountered, it's maximal
				return 0
			}
			for i := 1; i < len(x); i++ {
				// negated, so that a NaN is taken
				if v := T(x[i]); !v.Le(mp) {
					mp, idx = v, i
					if mp.IsNaN() {
						break
					}
				}
			}
			return idx
		},
		Dot: func(x, y []uint16) uint16 {
			var sum float32
			for i := range min(len(x), len(y)) {
				sum += T(x[i]).Float32() * T(y[i]).Float32()
			}
			return uint16(fromFloat32(sum))
		},
		NonZero: func(v uint16) bool {
			return v&^0x8000 != 0
		},
		Fill: func(x []uint16) {
			if len(x) < 2 {
				return
			}
			start := T(x[0]).Float32()
			delta := T(x[1]).Float32() - start
			for i := 2; i < len(x); i++ {
				x[i] = uint16(fromFloat32(start + float32(i)*delta))
			}
		},
		FillWithScalar: func(x []uint16, v uint16) {
			for i := range x {
				x[i] = v
			}
		},
		CopySwap: copySwap,
	}
}

// copySwap copies 2-byte elements from src to dst, swapping the bytes of
// each when swap is set.
func copySwap(dst, src []byte, swap bool) {
	n := copy(dst, src)
	if !swap {
		return
	}
	for i := 0; i+1 < n; i += 2 {
		dst[i], dst[i+1] = dst[i+1], dst[i]
	}
}

type cast struct {
	builtin dtype.TypeNum
	to      dtype.CastFunc // format -> builtin
	from    dtype.CastFunc // builtin -> format
	safe    bool           // format -> builtin loses nothing
}

func casts[T scalar[T]](fromFloat32 func(float32) T, fromFloat64 func(float64) T) []cast {
	return []cast{
		{
			builtin: dtype.Bool,
			to:      castTo(func(v T) bool { return uint16(v)&^0x8000 != 0 }),
			from: castFrom(func(b bool) T {
				if b {
					return fromFloat64(1)
				}
				return fromFloat64(0)
			}),
		},
		{
			builtin: dtype.Int64,
			to:      castTo(func(v T) int64 { return toInt64(v.Float64()) }),
			from:    castFrom(func(i int64) T { return fromFloat64(int64ToFloat64(i)) }),
		},
		{
			builtin: dtype.Uint64,
			to:      castTo(func(v T) uint64 { return toUint64(v.Float64()) }),
			from:    castFrom(func(u uint64) T { return fromFloat64(uint64ToFloat64(u)) }),
		},
		{
			builtin: dtype.Float32,
			to:      castTo(func(v T) float32 { return v.Float32() }),
			from:    castFrom(fromFloat32),
			safe:    true,
		},
		{
			builtin: dtype.Float64,
			to:      castTo(func(v T) float64 { return v.Float64() }),
			from:    castFrom(fromFloat64),
			safe:    true,
		},
	}
}

type element interface {
	bool | int64 | uint64 | float32 | float64
}

func castTo[T scalar[T], E element](conv func(T) E) dtype.CastFunc {
	return func(src, dst any) error {
		s, ok := src.([]uint16)
		d, ok2 := dst.([]E)
		if !ok || !ok2 {
			return fmt.Errorf("%w: cast from %T to %T", dtype.ErrShape, src, dst)
		}
		if len(s) != len(d) {
			return fmt.Errorf("%w: cast of %d elements into %d", dtype.ErrShape, len(s), len(d))
		}
		for i, v := range s {
			d[i] = conv(T(v))
		}
		return nil
	}
}

func castFrom[T scalar[T], E element](conv func(E) T) dtype.CastFunc {
	return func(src, dst any) error {
		s, ok := src.([]E)
		d, ok2 := dst.([]uint16)
		if !ok || !ok2 {
			return fmt.Errorf("%w: cast from %T to %T", dtype.ErrShape, src, dst)
		}
		if len(s) != len(d) {
			return fmt.Errorf("%w: cast of %d elements into %d", dtype.ErrShape, len(s), len(d))
		}
		for i, v := range s {
			d[i] = uint16(conv(v))
		}
		return nil
	}
}

// uint64ToFloat64 converts u to a float64 rounded to odd: when bits below
// the top 53 are dropped, the lowest kept bit is set. The result converts
// exactly, and encoding it into 16 bits rounds as u itself would.
func uint64ToFloat64(u uint64) float64 {
	if n := bits.Len64(u); n > 53 {
		mask := uint64(1)<<(n-53) - 1
		if u&mask != 0 {
			u = u&^mask | (mask + 1)
		}
	}
	return float64(u)
}

func int64ToFloat64(i int64) float64 {
	if i < 0 {
		return -uint64ToFloat64(uint64(-i))
	}
	return uint64ToFloat64(uint64(i))
}

// toInt64 truncates toward zero, saturating at the int64 bounds; NaN is 0.
func toInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// toUint64 truncates toward zero, saturating at 0 and MaxUint64; NaN is 0.
func toUint64(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(f)
}
