package dtype

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shawwn/numpy-half/finfo"
)

func testDescr(name string) *Descr {
	return &Descr{
		Name:      name,
		Kind:      'V',
		Char:      'E',
		ByteOrder: '=',
		Size:      2,
		Alignment: 2,
		Funcs: &ArrFuncs{
			GetItem:  func(v uint16) float64 { return float64(v) },
			SetItem:  func(f float64) uint16 { return uint16(f) },
			CopySwap: func(dst, src []byte, swap bool) { copy(dst, src) },
		},
	}
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()
	for _, tc := range []struct {
		name string
		t    TypeNum
		size int
	}{
		{"bool", Bool, 1},
		{"int64", Int64, 8},
		{"uint64", Uint64, 8},
		{"float32", Float32, 4},
		{"float64", Float64, 8},
		{"float16", Float16, 2},
	} {
		got, ok := r.Lookup(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.t, got)
		d, ok := r.Descr(got)
		require.True(t, ok)
		assert.Equal(t, tc.size, d.Size)
		assert.Equal(t, tc.size, d.Alignment)
	}
	assert.Equal(t, []TypeNum{Bool, Int64, Uint64, Float32, Float64, Float16}, r.Types())
	assert.ErrorIs(t, r.Unregister(Float16), ErrBuiltin)
}

func TestRegistry_RegisterDataType(t *testing.T) {
	r := NewRegistry()

	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)
	assert.Equal(t, UserDef, a)

	b, err := r.RegisterDataType(testDescr("b"))
	require.NoError(t, err)
	assert.Equal(t, UserDef+1, b)

	_, err = r.RegisterDataType(testDescr("a"))
	assert.ErrorIs(t, err, ErrNameTaken)
	_, err = r.RegisterDataType(testDescr("float16"))
	assert.ErrorIs(t, err, ErrNameTaken)

	got, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

func TestRegistry_InvalidDescr(t *testing.T) {
	r := NewRegistry()
	for _, d := range []*Descr{
		nil,
		{Size: 2, Alignment: 2},
		{Name: "x", Alignment: 2},
		{Name: "x", Size: 2, Alignment: 2},
		{Name: "x", Size: 2, Alignment: 2, Funcs: &ArrFuncs{}},
	} {
		_, err := r.RegisterDataType(d)
		assert.ErrorIs(t, err, ErrInvalidDescr)
	}
	_, ok := r.Lookup("x")
	assert.False(t, ok)
}

func TestRegistry_TypeDict(t *testing.T) {
	r := NewRegistry()
	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)

	require.NoError(t, r.SetTypeDict("alpha", a))
	got, ok := r.Lookup("alpha")
	assert.True(t, ok)
	assert.Equal(t, a, got)
	assert.Equal(t, []string{"alpha"}, r.Aliases(a))

	assert.ErrorIs(t, r.SetTypeDict("alpha", a), ErrNameTaken)
	assert.ErrorIs(t, r.SetTypeDict("float32", a), ErrNameTaken)
	assert.ErrorIs(t, r.SetTypeDict("beta", UserDef+7), ErrUnknownType)
}

func TestRegistry_Finfo(t *testing.T) {
	r := NewRegistry()
	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)

	_, ok := r.Finfo(a)
	assert.False(t, ok)

	require.NoError(t, r.SetFinfo(a, finfo.XFloat16()))
	info, ok := r.Finfo(a)
	assert.True(t, ok)
	assert.Same(t, finfo.XFloat16(), info)

	assert.ErrorIs(t, r.SetFinfo(UserDef+7, finfo.XFloat16()), ErrUnknownType)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)
	require.NoError(t, r.SetTypeDict("alpha", a))
	require.NoError(t, r.SetFinfo(a, finfo.BFloat16()))
	require.NoError(t, r.RegisterLoop("negative", a, UnaryLoop(func(x, out []uint16) {})))
	require.NoError(t, r.RegisterCast(a, Float64, func(src, dst any) error { return nil }))
	require.NoError(t, r.RegisterCanCast(a, Float64))

	require.NoError(t, r.Unregister(a))

	for _, name := range []string{"a", "alpha"} {
		_, ok := r.Lookup(name)
		assert.False(t, ok, name)
	}
	_, ok := r.Finfo(a)
	assert.False(t, ok)
	_, err = r.Loop("negative", a)
	assert.ErrorIs(t, err, ErrNoLoop)
	assert.ErrorIs(t, r.Cast(a, Float64, nil, nil), ErrNoLoop)
	assert.False(t, r.CanCast(a, Float64))
	assert.ErrorIs(t, r.Unregister(a), ErrUnknownType)

	// the name is free again
	_, err = r.RegisterDataType(testDescr("a"))
	assert.NoError(t, err)
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()
	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)

	add := BinaryLoop(func(x, y, out []uint16) {
		for i := range out {
			out[i] = x[i] + y[i]
		}
	})
	neg := UnaryLoop(func(x, out []uint16) {
		for i := range out {
			out[i] = x[i] ^ 0x8000
		}
	})
	less := CompareLoop(func(x, y []uint16, out []bool) {
		for i := range out {
			out[i] = x[i] < y[i]
		}
	})
	require.NoError(t, r.RegisterLoop("add", a, add))
	require.NoError(t, r.RegisterLoop("negative", a, neg))
	require.NoError(t, r.RegisterLoop("less", a, less))
	assert.Equal(t, []string{"add", "less", "negative"}, r.Ufuncs(a))

	out := make([]uint16, 3)
	require.NoError(t, r.Call("add", a, []uint16{1, 2, 3}, []uint16{10, 20, 30}, out))
	assert.Equal(t, []uint16{11, 22, 33}, out)

	require.NoError(t, r.Call("negative", a, []uint16{1, 2, 3}, out))
	assert.Equal(t, []uint16{0x8001, 0x8002, 0x8003}, out)

	cmp := make([]bool, 2)
	require.NoError(t, r.Compare("less", a, []uint16{1, 5}, []uint16{2, 4}, cmp))
	assert.Equal(t, []bool{true, false}, cmp)

	assert.ErrorIs(t, r.Call("add", a, []uint16{1}, out), ErrShape)
	assert.ErrorIs(t, r.Call("add", a, []uint16{1}, []uint16{1, 2}, out), ErrShape)
	assert.ErrorIs(t, r.Call("less", a, []uint16{1}, []uint16{1}, out[:1]), ErrNoLoop)
	assert.ErrorIs(t, r.Compare("add", a, nil, nil, nil), ErrNoLoop)
	assert.ErrorIs(t, r.Compare("less", a, []uint16{1}, nil, nil), ErrShape)
	assert.ErrorIs(t, r.Call("sqrt", a, out, out), ErrNoLoop)
	assert.ErrorIs(t, r.RegisterLoop("add", UserDef+7, add), ErrUnknownType)
	assert.Error(t, r.RegisterLoop("add", a, nil))
}

func TestRegistry_Cast(t *testing.T) {
	r := NewRegistry()
	a, err := r.RegisterDataType(testDescr("a"))
	require.NoError(t, err)

	errBad := errors.New("bad operands")
	require.NoError(t, r.RegisterCast(a, Float64, func(src, dst any) error {
		s, ok1 := src.([]uint16)
		d, ok2 := dst.([]float64)
		if !ok1 || !ok2 {
			return errBad
		}
		for i := range s {
			d[i] = float64(s[i])
		}
		return nil
	}))

	dst := make([]float64, 2)
	require.NoError(t, r.Cast(a, Float64, []uint16{1, 2}, dst))
	assert.Equal(t, []float64{1, 2}, dst)
	assert.ErrorIs(t, r.Cast(a, Float64, []float32{1}, dst), errBad)
	assert.ErrorIs(t, r.Cast(Float64, a, dst, nil), ErrNoLoop)
	assert.ErrorIs(t, r.RegisterCast(a, UserDef+7, func(src, dst any) error { return nil }), ErrUnknownType)

	assert.True(t, r.CanCast(a, a))
	assert.False(t, r.CanCast(a, Float64))
	require.NoError(t, r.RegisterCanCast(a, Float64))
	assert.True(t, r.CanCast(a, Float64))
	assert.False(t, r.CanCast(Float64, a))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = r.RegisterDataType(testDescr(fmt.Sprintf("t%d", i%8)))
		}()
	}
	wg.Wait()

	var taken int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrNameTaken)
			taken++
		}
	}
	assert.Equal(t, 24, taken)
	assert.Len(t, r.Types(), 6+8)
}
