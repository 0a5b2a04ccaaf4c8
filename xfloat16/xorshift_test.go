package xfloat16

import "math"

// xorshift32 is a tiny deterministic generator for benchmarks and sampled tests.
type xorshift32 struct {
	x uint32
}

func newXorshift32() *xorshift32 {
	return &xorshift32{x: 2463534242}
}

func (r *xorshift32) Uint32() uint32 {
	r.x ^= r.x << 13
	r.x ^= r.x >> 17
	r.x ^= r.x << 5
	return r.x
}

// Float32 returns a float32 with uniformly distributed bits.
func (r *xorshift32) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Float16Pair returns two Float16 values with uniformly distributed bits.
func (r *xorshift32) Float16Pair() (Float16, Float16) {
	x := r.Uint32()
	return Float16(x), Float16(x >> 16)
}

type xorshift64 struct {
	x uint64
}

func newXorshift64() *xorshift64 {
	return &xorshift64{x: 88172645463325252}
}

func (r *xorshift64) Uint64() uint64 {
	r.x ^= r.x << 13
	r.x ^= r.x >> 7
	r.x ^= r.x << 17
	return r.x
}

// Float64 returns a float64 with uniformly distributed bits.
func (r *xorshift64) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}
