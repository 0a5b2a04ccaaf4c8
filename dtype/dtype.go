// Package dtype defines the contract between a scalar format and the array
// host that stores it: the descriptor a format registers, the elementwise
// loops and casts it provides, and the Host interface that accepts them.
//
// Registry is an in-memory Host. It is what the half package registers
// into by default and what the tests and the halfinfo command dispatch
// through.
package dtype

import (
	"errors"
	"fmt"

	"github.com/shawwn/numpy-half/finfo"
)

var (
	// ErrNameTaken is returned when a type name or alias is already in use.
	ErrNameTaken = errors.New("dtype: name already registered")

	// ErrUnknownType is returned for a type number the host does not know.
	ErrUnknownType = errors.New("dtype: unknown type")

	// ErrNoLoop is returned when no loop or cast is registered for a request.
	ErrNoLoop = errors.New("dtype: no loop registered")

	// ErrInvalidDescr is returned when a descriptor lacks required fields.
	ErrInvalidDescr = errors.New("dtype: invalid descriptor")

	// ErrBuiltin is returned when removing a builtin type.
	ErrBuiltin = errors.New("dtype: builtin type")

	// ErrShape is returned when the operands of a loop differ in length or
	// a slice has the wrong element type.
	ErrShape = errors.New("dtype: operand mismatch")
)

// TypeNum identifies a type within a host.
type TypeNum int

// Builtin type numbers. Types registered at run time are numbered from
// UserDef upwards.
const (
	Bool TypeNum = iota
	Int64
	Uint64
	Float32
	Float64
	Float16

	UserDef TypeNum = 256
)

var builtinNames = [...]string{
	Bool:    "bool",
	Int64:   "int64",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Float16: "float16",
}

// Descr describes a scalar type the way the host's type system sees it.
type Descr struct {
	Name      string
	Kind      byte // 'V' keeps the host from equating it with a builtin float of the same size
	Char      byte
	ByteOrder byte
	Size      int
	Alignment int
	Funcs     *ArrFuncs
}

func (d *Descr) validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("%w: nil", ErrInvalidDescr)
	case d.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidDescr)
	case d.Size <= 0 || d.Alignment <= 0:
		return fmt.Errorf("%w: %s: size %d, alignment %d", ErrInvalidDescr, d.Name, d.Size, d.Alignment)
	case d.Funcs == nil || d.Funcs.GetItem == nil || d.Funcs.SetItem == nil || d.Funcs.CopySwap == nil:
		return fmt.Errorf("%w: %s: missing getitem, setitem or copyswap", ErrInvalidDescr, d.Name)
	}
	return nil
}

// ArrFuncs are the per-type functions the host calls on raw element
// storage. Slices hold storage values, one element each.
type ArrFuncs struct {
	GetItem func(v uint16) float64
	SetItem func(f float64) uint16

	// Compare orders two elements for sorting.
	Compare func(a, b uint16) int

	// ArgMax returns the index of the largest element, or of the first NaN.
	ArgMax func(x []uint16) int

	// Dot returns the inner product of x and y. Elements past the end of
	// the shorter slice are ignored.
	Dot func(x, y []uint16) uint16

	NonZero func(v uint16) bool

	// Fill continues the arithmetic progression set by x[0] and x[1].
	Fill func(x []uint16)

	FillWithScalar func(x []uint16, v uint16)

	// CopySwap copies the raw bytes of src into dst, byte-swapping each
	// element when swap is set.
	CopySwap func(dst, src []byte, swap bool)
}

// Loop is an elementwise kernel registered for a ufunc.
// It is one of BinaryLoop, UnaryLoop or CompareLoop.
type Loop interface {
	nin() int
}

// BinaryLoop computes out[i] = op(x[i], y[i]).
type BinaryLoop func(x, y, out []uint16)

// UnaryLoop computes out[i] = op(x[i]).
type UnaryLoop func(x, out []uint16)

// CompareLoop computes out[i] = x[i] op y[i].
type CompareLoop func(x, y []uint16, out []bool)

func (BinaryLoop) nin() int  { return 2 }
func (UnaryLoop) nin() int   { return 1 }
func (CompareLoop) nin() int { return 2 }

// CastFunc converts src into dst elementwise. src and dst are slices of
// the Go element types of the two types: []bool, []int64, []uint64,
// []float32, []float64, or []uint16 for 16-bit storage types.
type CastFunc func(src, dst any) error

// Host is the array host's type system as seen by a registering format.
type Host interface {
	// RegisterDataType adds a new scalar type and returns its number.
	// It fails with ErrNameTaken if the name is in use.
	RegisterDataType(d *Descr) (TypeNum, error)

	// Unregister removes a type registered at run time along with its
	// aliases, limits, loops and casts.
	Unregister(t TypeNum) error

	// Lookup finds a type by name or alias.
	Lookup(name string) (TypeNum, bool)

	// SetTypeDict adds alias as another name for t.
	SetTypeDict(alias string, t TypeNum) error

	// SetFinfo stores the limits record of t in the host's cache.
	SetFinfo(t TypeNum, info *finfo.Info) error

	RegisterLoop(ufunc string, t TypeNum, loop Loop) error
	RegisterCast(from, to TypeNum, fn CastFunc) error

	// RegisterCanCast marks the cast from -> to as safe for implicit
	// promotion.
	RegisterCanCast(from, to TypeNum) error
}
