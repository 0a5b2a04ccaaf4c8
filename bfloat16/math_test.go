package bfloat16

import (
	"math"
	"testing"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b BFloat16) BFloat16
		a, b BFloat16
		r    BFloat16
	}{
		{"add", BFloat16.Add, 0x3f80, 0x3f80, 0x4000}, // 1 + 1 = 2
		{"add", BFloat16.Add, 0x3f80, 0x3b80, 0x3f80}, // 1 + 2^-8 ties to 1
		{"add", BFloat16.Add, 0x3f81, 0x3b80, 0x3f82}, // ties to even upwards
		{"add", BFloat16.Add, 0x7f7f, 0x7f7f, 0x7f80}, // max + max overflows
		{"add", BFloat16.Add, 0x7f7f, 0x7180, 0x7f80}, // max + 2^100 overflows
		{"add", BFloat16.Add, 0x7f80, 0xff80, 0x7fc0}, // +Inf + -Inf = NaN
		{"add", BFloat16.Add, 0x8000, 0x8000, 0x8000}, // -0 + -0 = -0
		{"sub", BFloat16.Sub, 0x3f80, 0x3f80, 0x0000}, // 1 - 1 = +0
		{"sub", BFloat16.Sub, 0x0001, 0x0002, 0x8001}, // subnormal difference
		{"mul", BFloat16.Mul, 0x4000, 0x3fc0, 0x4040}, // 2 * 1.5 = 3
		{"mul", BFloat16.Mul, 0x0001, 0x3f00, 0x0000}, // 2^-134 ties to zero
		{"mul", BFloat16.Mul, 0x7f80, 0x0000, 0x7fc0}, // Inf * 0 = NaN
		{"quo", BFloat16.Quo, 0x3f80, 0x4040, 0x3eab}, // 1 / 3
		{"quo", BFloat16.Quo, 0x3f80, 0x0000, 0x7f80}, // 1 / +0 = +Inf
		{"quo", BFloat16.Quo, 0x3f80, 0x8000, 0xff80}, // 1 / -0 = -Inf
		{"quo", BFloat16.Quo, 0x0000, 0x0000, 0x7fc0}, // 0 / 0 = NaN
		{"quo", BFloat16.Quo, 0x7fc1, 0x3f80, 0x7fc0}, // NaN payloads are dropped
	}
	for _, tt := range tests {
		if got := tt.op(tt.a, tt.b); got != tt.r {
			t.Errorf("%s(%04x, %04x): expected %04x, got %04x", tt.name, uint16(tt.a), uint16(tt.b), uint16(tt.r), uint16(got))
		}
	}
}

func TestDivisionByZero_All(t *testing.T) {
	for bits := 0; bits < 1<<16; bits++ {
		x := FromBits(uint16(bits))
		if x.IsNaN() {
			continue
		}
		zero := BFloat16(0).Copysign(x)
		got := x.Quo(zero)
		switch {
		case x.IsZero():
			if !got.IsNaN() {
				t.Errorf("%04x / %04x: expected NaN, got %04x", bits, uint16(zero), uint16(got))
			}
		case got != Inf(1):
			t.Errorf("%04x / %04x: expected +Inf, got %04x", bits, uint16(zero), uint16(got))
		}
	}
}

// float32 carries more than twice the bits of a bfloat16, so rounding a
// float32 result again is correct away from the float32 subnormals and
// the overflow threshold.
func TestKernel_MatchesFloat32(t *testing.T) {
	var s uint32 = 2463534242
	for i := 0; i < 1<<18; i++ {
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		a, b := BFloat16(s), BFloat16(s>>16)
		fa, fb := a.Float32(), b.Float32()
		check := func(name string, got, want BFloat16, exact float64) {
			if got.IsNaN() && want.IsNaN() {
				return
			}
			if m := math.Abs(exact); m != 0 && m < 0x1p-100 || m > MaxValue.Float64() {
				return
			}
			if got != want {
				t.Fatalf("%s(%04x, %04x): expected %04x, got %04x", name, uint16(a), uint16(b), uint16(want), uint16(got))
			}
		}
		da, db := a.Float64(), b.Float64()
		check("add", a.Add(b), FromFloat32(fa+fb), da+db)
		check("sub", a.Sub(b), FromFloat32(fa-fb), da-db)
		check("mul", a.Mul(b), FromFloat32(fa*fb), da*db)
		check("quo", a.Quo(b), FromFloat32(fa/fb), da/db)
	}
}

func TestCompare(t *testing.T) {
	ordered := []BFloat16{0xff80, 0xff7f, 0xbf80, 0x8001, 0x0001, 0x3f80, 0x7f7f, 0x7f80}
	for i, a := range ordered {
		for j, b := range ordered {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			if got := a.Compare(b); got != want {
				t.Errorf("Compare(%04x, %04x): expected %d, got %d", uint16(a), uint16(b), want, got)
			}
			if a.Lt(b) != (i < j) || a.Ge(b) != (i >= j) || a.Eq(b) != (i == j) {
				t.Errorf("%04x vs %04x: unexpected ordering", uint16(a), uint16(b))
			}
		}
		if NaN().Compare(a) != -1 || a.Compare(NaN()) != 1 {
			t.Errorf("NaN must sort before %04x", uint16(a))
		}
		if a.Eq(NaN()) || a.Lt(NaN()) || a.Ge(NaN()) || !a.Ne(NaN()) {
			t.Errorf("%04x vs NaN: unexpected comparison", uint16(a))
		}
	}
	if BFloat16(0x8000).Compare(0) != 0 || !BFloat16(0x8000).Eq(0) || !BFloat16(0x8000).Le(0) || BFloat16(0x8000).Gt(0) {
		t.Errorf("-0 must equal +0")
	}
}

func TestSignOps(t *testing.T) {
	if got := BFloat16(0x3f80).Neg(); got != 0xbf80 {
		t.Errorf("Neg: got %04x", uint16(got))
	}
	if got := BFloat16(0xbf80).Abs(); got != 0x3f80 {
		t.Errorf("Abs: got %04x", uint16(got))
	}
	if got := BFloat16(0x3f80).Copysign(0x8000); got != 0xbf80 {
		t.Errorf("Copysign: got %04x", uint16(got))
	}
	if !NaN().Neg().IsNaN() {
		t.Errorf("Neg(NaN) must be NaN")
	}
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		x, r BFloat16
	}{
		{0x0000, 0x0000},
		{0x8000, 0x8000},
		{0x3f80, 0x3f80},
		{0x4000, 0x3fb5}, // sqrt(2)
		{0x4080, 0x4000}, // sqrt(4)
		{0x7f80, 0x7f80},
		{0xbf80, 0x7fc0},
	}
	for _, tt := range tests {
		if got := tt.x.Sqrt(); got != tt.r {
			t.Errorf("Sqrt(%04x): expected %04x, got %04x", uint16(tt.x), uint16(tt.r), uint16(got))
		}
	}
}

func TestNextafterSpacing(t *testing.T) {
	if got := BFloat16(0x3f80).Nextafter(Inf(1)); got != 0x3f81 {
		t.Errorf("expected 0x3f81, got %04x", uint16(got))
	}
	if got := BFloat16(0x3f80).Nextafter(0); got != 0x3f7f {
		t.Errorf("expected 0x3f7f, got %04x", uint16(got))
	}
	if got := BFloat16(0).Nextafter(Inf(-1)); got != 0x8001 {
		t.Errorf("expected 0x8001, got %04x", uint16(got))
	}
	if got := BFloat16(0x3f80).Spacing(); got.Float64() != 0x1p-7 {
		t.Errorf("expected 2^-7, got %x", got.Float64())
	}
	if got := BFloat16(0xbf80).Spacing(); got.Float64() != -0x1p-7 {
		t.Errorf("expected -2^-7, got %x", got.Float64())
	}
	if got := MaxValue.Spacing(); !got.IsNaN() {
		t.Errorf("expected NaN, got %04x", uint16(got))
	}
}
