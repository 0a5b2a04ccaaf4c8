// Package half installs 16-bit floating-point formats into an array host.
//
// Two formats are provided: bfloat16, the upper half of a float32, and
// xfloat16, IEEE 754 binary16. The value types live in the bfloat16 and
// xfloat16 packages; this package hands the host everything it needs to
// treat them as first-class scalar types: a descriptor with its array
// functions, a type-dictionary alias, the limits record, the elementwise
// loops and the casts to and from the builtin types.
package half

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shawwn/numpy-half/bfloat16"
	"github.com/shawwn/numpy-half/dtype"
	"github.com/shawwn/numpy-half/envconfig"
	"github.com/shawwn/numpy-half/finfo"
	"github.com/shawwn/numpy-half/internal/binary16"
	"github.com/shawwn/numpy-half/xfloat16"
)

// Format identifies one of the 16-bit formats.
type Format int

const (
	BFloat16 Format = iota + 1
	XFloat16
)

// Formats lists every supported format.
var Formats = []Format{BFloat16, XFloat16}

// ErrAlreadyRegistered matches every *AlreadyRegisteredError.
var ErrAlreadyRegistered = errors.New("half: format already registered")

// AlreadyRegisteredError reports that the host already has a type under
// one of the names a format needs.
type AlreadyRegisteredError struct {
	Format Format
	Name   string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("half: the host already has a %s type (%q is taken)", e.Format, e.Name)
}

func (e *AlreadyRegisteredError) Is(target error) bool {
	return target == ErrAlreadyRegistered
}

// format holds what registration needs from one value type.
type format struct {
	name   string
	layout binary16.Layout
	info   func() *finfo.Info
	funcs  *dtype.ArrFuncs
	loops  map[string]dtype.Loop
	casts  []cast

	repr  func(uint16) string
	text  func(uint16) string
	parse func(string) (uint16, error)
}

func newFormat[T scalar[T]](name string, l binary16.Layout, info func() *finfo.Info,
	fromFloat32 func(float32) T, fromFloat64 func(float64) T, parse func(string) (T, error)) *format {
	return &format{
		name:   name,
		layout: l,
		info:   info,
		funcs:  arrFuncs(fromFloat32, fromFloat64),
		loops:  loops[T](),
		casts:  casts(fromFloat32, fromFloat64),
		repr:   func(v uint16) string { return T(v).Repr() },
		text:   func(v uint16) string { return T(v).String() },
		parse: func(s string) (uint16, error) {
			v, err := parse(s)
			return uint16(v), err
		},
	}
}

var formats = sync.OnceValue(func() map[Format]*format {
	return map[Format]*format{
		BFloat16: newFormat("bfloat16", binary16.Brain, finfo.BFloat16,
			bfloat16.FromFloat32, bfloat16.FromFloat64, bfloat16.Parse),
		XFloat16: newFormat("xfloat16", binary16.Half, finfo.XFloat16,
			xfloat16.FromFloat32, xfloat16.FromFloat64, xfloat16.Parse),
	}
})

func (f Format) impl() *format {
	impl, ok := formats()[f]
	if !ok {
		panic(fmt.Sprintf("half: invalid Format(%d)", int(f)))
	}
	return impl
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	_, ok := formats()[f]
	return ok
}

// String returns the type name, "bfloat16" or "xfloat16".
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return f.impl().name
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("half: unknown format %q", s)
}

// Layout returns the bit layout of f.
func (f Format) Layout() binary16.Layout { return f.impl().layout }

// Finfo returns the limits record of f.
func (f Format) Finfo() *finfo.Info { return f.impl().info() }

// Decode returns the value of the storage pattern v.
func (f Format) Decode(v uint16) float64 { return f.impl().funcs.GetItem(v) }

// Encode returns the storage pattern nearest to x.
func (f Format) Encode(x float64) uint16 { return f.impl().funcs.SetItem(x) }

// Text returns the shortest decimal string that identifies v.
func (f Format) Text(v uint16) string { return f.impl().text(v) }

// Repr returns v the way the host prints a scalar, e.g. "bfloat16(1.5)".
func (f Format) Repr(v uint16) string { return f.impl().repr(v) }

// Parse converts s to the nearest storage pattern of f.
func (f Format) Parse(s string) (uint16, error) { return f.impl().parse(s) }

// typeName is the name of the scalar type itself; the bare format name is
// its type-dictionary alias.
func (f Format) typeName() string {
	return "half." + f.String()
}

// byteOrderAliases returns the explicit-endian spellings of the alias that
// denote native storage.
func (f Format) byteOrderAliases() []string {
	native := "<"
	if binary.NativeEndian.Uint16([]byte{0, 1}) == 1 {
		native = ">"
	}
	return []string{"=" + f.String(), native + f.String()}
}

// Options adjust registration.
type Options struct {
	// ByteOrderAliases also registers "=name" and the native "<name" or
	// ">name" as aliases.
	ByteOrderAliases bool
}

// DefaultOptions returns the options taken from the environment.
func DefaultOptions() Options {
	return Options{ByteOrderAliases: envconfig.ByteOrderAliases()}
}

var registerMu sync.Mutex

// Register installs f into h with DefaultOptions.
func Register(h dtype.Host, f Format) error {
	return RegisterOptions(h, f, DefaultOptions())
}

// RegisterOptions installs f into h.
//
// It fails with an *AlreadyRegisteredError, before changing h, when any
// name the format needs is taken. A failure after the type is created
// unregisters it again, so h never keeps a partial registration.
func RegisterOptions(h dtype.Host, f Format, opts Options) error {
	if !f.Valid() {
		return fmt.Errorf("half: invalid Format(%d)", int(f))
	}

	registerMu.Lock()
	defer registerMu.Unlock()

	impl := f.impl()
	aliases := []string{f.String()}
	if opts.ByteOrderAliases {
		aliases = append(aliases, f.byteOrderAliases()...)
	}

	for _, name := range append([]string{f.typeName()}, aliases...) {
		if _, ok := h.Lookup(name); ok {
			err := &AlreadyRegisteredError{Format: f, Name: name}
			slog.Error("registration refused", "format", f, "error", err)
			return err
		}
	}

	t, err := h.RegisterDataType(&dtype.Descr{
		Name:      f.typeName(),
		Kind:      'V',
		Char:      'E',
		ByteOrder: '=',
		Size:      2,
		Alignment: 2,
		Funcs:     impl.funcs,
	})
	if errors.Is(err, dtype.ErrNameTaken) {
		return &AlreadyRegisteredError{Format: f, Name: f.typeName()}
	} else if err != nil {
		return fmt.Errorf("half: register %s: %w", f, err)
	}

	if err := install(h, t, impl, aliases); err != nil {
		if uerr := h.Unregister(t); uerr != nil {
			err = errors.Join(err, uerr)
		}
		slog.Error("registration failed", "format", f, "error", err)
		return fmt.Errorf("half: register %s: %w", f, err)
	}

	slog.Debug("registered format", "format", f, "type", t, "aliases", aliases, "loops", len(impl.loops))
	return nil
}

func install(h dtype.Host, t dtype.TypeNum, impl *format, aliases []string) error {
	for _, alias := range aliases {
		if err := h.SetTypeDict(alias, t); err != nil {
			return err
		}
	}

	if err := h.SetFinfo(t, impl.info()); err != nil {
		return err
	}

	for name, loop := range impl.loops {
		if err := h.RegisterLoop(name, t, loop); err != nil {
			return fmt.Errorf("loop %s: %w", name, err)
		}
	}

	for _, c := range impl.casts {
		if err := h.RegisterCast(t, c.builtin, c.to); err != nil {
			return err
		}
		if err := h.RegisterCast(c.builtin, t, c.from); err != nil {
			return err
		}
		if c.safe {
			if err := h.RegisterCanCast(t, c.builtin); err != nil {
				return err
			}
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(h dtype.Host, f Format) {
	if err := Register(h, f); err != nil {
		panic(err)
	}
}

// Default returns a process-wide registry with every format registered.
var Default = sync.OnceValue(func() *dtype.Registry {
	r := dtype.NewRegistry()
	for _, f := range Formats {
		MustRegister(r, f)
	}
	return r
})
