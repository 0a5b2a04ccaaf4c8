package dtype

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/shawwn/numpy-half/finfo"
)

type castKey struct {
	from, to TypeNum
}

// Registry is an in-memory Host. The zero value is not usable; create one
// with NewRegistry. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	next    TypeNum
	types   map[TypeNum]*Descr
	names   map[string]TypeNum
	aliases map[TypeNum][]string
	finfo   map[TypeNum]*finfo.Info
	loops   map[string]map[TypeNum]Loop
	casts   map[castKey]CastFunc
	safe    map[castKey]bool
}

var _ Host = (*Registry)(nil)

// NewRegistry returns a registry holding only the builtin types.
func NewRegistry() *Registry {
	r := &Registry{
		next:    UserDef,
		types:   make(map[TypeNum]*Descr),
		names:   make(map[string]TypeNum),
		aliases: make(map[TypeNum][]string),
		finfo:   make(map[TypeNum]*finfo.Info),
		loops:   make(map[string]map[TypeNum]Loop),
		casts:   make(map[castKey]CastFunc),
		safe:    make(map[castKey]bool),
	}

	builtins := []*Descr{
		Bool:    {Kind: 'b', Char: '?', Size: 1},
		Int64:   {Kind: 'i', Char: 'q', Size: 8},
		Uint64:  {Kind: 'u', Char: 'Q', Size: 8},
		Float32: {Kind: 'f', Char: 'f', Size: 4},
		Float64: {Kind: 'f', Char: 'd', Size: 8},
		Float16: {Kind: 'f', Char: 'e', Size: 2},
	}
	for t, d := range builtins {
		d.Name = builtinNames[t]
		d.ByteOrder = '='
		d.Alignment = d.Size
		r.types[TypeNum(t)] = d
		r.names[d.Name] = TypeNum(t)
	}
	return r
}

// RegisterDataType implements Host.
func (r *Registry) RegisterDataType(d *Descr) (TypeNum, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[d.Name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrNameTaken, d.Name)
	}
	t := r.next
	r.next++
	r.types[t] = d
	r.names[d.Name] = t
	slog.Debug("registered data type", "name", d.Name, "type", t)
	return t, nil
}

// Unregister implements Host.
func (r *Registry) Unregister(t TypeNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.types[t]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if t < UserDef {
		return fmt.Errorf("%w: %s", ErrBuiltin, d.Name)
	}

	delete(r.types, t)
	delete(r.names, d.Name)
	for _, alias := range r.aliases[t] {
		delete(r.names, alias)
	}
	delete(r.aliases, t)
	delete(r.finfo, t)
	for _, loops := range r.loops {
		delete(loops, t)
	}
	for k := range r.casts {
		if k.from == t || k.to == t {
			delete(r.casts, k)
		}
	}
	for k := range r.safe {
		if k.from == t || k.to == t {
			delete(r.safe, k)
		}
	}
	slog.Debug("unregistered data type", "name", d.Name, "type", t)
	return nil
}

// Lookup implements Host.
func (r *Registry) Lookup(name string) (TypeNum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.names[name]
	return t, ok
}

// Descr returns the descriptor of t.
func (r *Registry) Descr(t TypeNum) (*Descr, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[t]
	return d, ok
}

// Aliases returns the aliases of t in registration order.
func (r *Registry) Aliases(t TypeNum) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.aliases[t])
}

// Types returns every known type number in ascending order.
func (r *Registry) Types() []TypeNum {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.types))
}

// SetTypeDict implements Host.
func (r *Registry) SetTypeDict(alias string, t TypeNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if _, ok := r.names[alias]; ok {
		return fmt.Errorf("%w: %q", ErrNameTaken, alias)
	}
	r.names[alias] = t
	r.aliases[t] = append(r.aliases[t], alias)
	return nil
}

// SetFinfo implements Host.
func (r *Registry) SetFinfo(t TypeNum, info *finfo.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	r.finfo[t] = info
	return nil
}

// Finfo returns the limits record stored for t.
func (r *Registry) Finfo(t TypeNum) (*finfo.Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.finfo[t]
	return info, ok
}

// RegisterLoop implements Host. A later loop for the same ufunc and type
// replaces the earlier one.
func (r *Registry) RegisterLoop(ufunc string, t TypeNum, loop Loop) error {
	if loop == nil {
		return fmt.Errorf("dtype: nil loop for %s", ufunc)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	loops, ok := r.loops[ufunc]
	if !ok {
		loops = make(map[TypeNum]Loop)
		r.loops[ufunc] = loops
	}
	loops[t] = loop
	return nil
}

// Loop returns the loop registered for ufunc on t.
func (r *Registry) Loop(ufunc string, t TypeNum) (Loop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loop, ok := r.loops[ufunc][t]
	if !ok {
		return nil, fmt.Errorf("%w: %s for type %d", ErrNoLoop, ufunc, t)
	}
	return loop, nil
}

// Ufuncs returns the names of the ufuncs with a loop for t, sorted.
func (r *Registry) Ufuncs(t TypeNum) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, loops := range r.loops {
		if _, ok := loops[t]; ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// RegisterCast implements Host.
func (r *Registry) RegisterCast(from, to TypeNum, fn CastFunc) error {
	if fn == nil {
		return fmt.Errorf("dtype: nil cast from %d to %d", from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTypes(from, to); err != nil {
		return err
	}
	r.casts[castKey{from, to}] = fn
	return nil
}

// RegisterCanCast implements Host.
func (r *Registry) RegisterCanCast(from, to TypeNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTypes(from, to); err != nil {
		return err
	}
	r.safe[castKey{from, to}] = true
	return nil
}

// CanCast reports whether from may be promoted to to implicitly.
func (r *Registry) CanCast(from, to TypeNum) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return from == to || r.safe[castKey{from, to}]
}

func (r *Registry) checkTypes(ts ...TypeNum) error {
	for _, t := range ts {
		if _, ok := r.types[t]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownType, t)
		}
	}
	return nil
}
