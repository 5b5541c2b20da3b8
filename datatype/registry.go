package datatype

import (
	"reflect"
	"sync"
	"unsafe"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hpckit/mpibind"
	"github.com/hpckit/mpibind/datatype/internal/layout"
)

// Registry is the process-wide cache of committed layout descriptors. It is
// seeded with the builtin descriptors at construction and builds everything
// else lazily through structural introspection. Safe for concurrent use:
// first use of an uncached type is serialized so the native commit happens
// exactly once per type.
type Registry struct {
	tr    mpibind.Transport
	mu    sync.Mutex
	cache map[reflect.Type]*Descriptor
	owned []mpibind.DatatypeHandle
}

// NewRegistry creates a registry bound to tr and seeds the builtin
// descriptors. A native failure while seeding is fatal.
func NewRegistry(tr mpibind.Transport) (*Registry, error) {
	r := &Registry{
		tr:    tr,
		cache: make(map[reflect.Type]*Descriptor),
	}
	if err := r.seedBuiltins(); err != nil {
		return nil, err
	}
	return r, nil
}

// Lookup returns the descriptor for t, building and committing it on first
// use. A (nil, nil) return means t has no structural description (boolean,
// reference type, or an undescribable nested field) and must be handled by
// a generic serialization fallback elsewhere; it is not an error. A non-nil
// error is a fatal native failure.
func (r *Registry) Lookup(t reflect.Type) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(t)
}

// For is a convenience wrapper over Lookup for a statically known type.
func For[T any](r *Registry) (*Descriptor, error) {
	return r.Lookup(reflect.TypeOf((*T)(nil)).Elem())
}

func (r *Registry) lookupLocked(t reflect.Type) (*Descriptor, error) {
	if d, ok := r.cache[t]; ok {
		return d, nil
	}

	info, ok := layout.Resolve(t)
	if !ok {
		return nil, nil
	}

	var d *Descriptor
	var err error
	switch t.Kind() {
	case reflect.Struct:
		d, err = r.buildStruct(t, info)
	case reflect.Array:
		d, err = r.buildArray(t)
	default:
		d = r.aliasPrimitive(t)
	}
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	r.cache[t] = d
	Logger().Debug("descriptor committed",
		zap.String("type", t.String()),
		zap.Uint32("handle", uint32(d.handle)),
		zap.Uintptr("extent", d.extent))
	return d, nil
}

func (r *Registry) buildStruct(t reflect.Type, info layout.Info) (*Descriptor, error) {
	counts := make([]int, 0, len(info.Fields))
	offsets := make([]uintptr, 0, len(info.Fields))
	types := make([]mpibind.DatatypeHandle, 0, len(info.Fields))
	fields := make([]Field, 0, len(info.Fields))

	for _, f := range info.Fields {
		elem, err := r.lookupLocked(f.Elem)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			// One undescribable field poisons the whole struct.
			return nil, nil
		}
		counts = append(counts, f.Count)
		offsets = append(offsets, f.Offset)
		types = append(types, elem.Handle())
		fields = append(fields, Field{
			Name:   f.Name,
			Elem:   elem,
			Offset: f.Offset,
			Count:  f.Count,
		})
	}

	h, err := r.tr.BuildStructLayout(counts, offsets, types)
	if err != nil {
		return nil, err
	}
	if err := r.commit(h); err != nil {
		return nil, err
	}

	return &Descriptor{typ: t, fields: fields, handle: h, extent: info.Size}, nil
}

func (r *Registry) buildArray(t reflect.Type) (*Descriptor, error) {
	elem, err := r.lookupLocked(t.Elem())
	if err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, nil
	}

	h, err := r.tr.BuildContiguousLayout(int(t.Size()), elem.Handle())
	if err != nil {
		return nil, err
	}
	if err := r.commit(h); err != nil {
		return nil, err
	}

	return &Descriptor{typ: t, handle: h, extent: t.Size()}, nil
}

// aliasPrimitive maps a named numeric type onto the builtin descriptor of
// its underlying kind; the committed handle is shared, only the identity
// differs.
func (r *Registry) aliasPrimitive(t reflect.Type) *Descriptor {
	base, ok := builtinType(t.Kind())
	if !ok {
		return nil
	}
	b, ok := r.cache[base]
	if !ok {
		return nil
	}
	return &Descriptor{typ: t, handle: b.handle, extent: t.Size()}
}

func (r *Registry) commit(h mpibind.DatatypeHandle) error {
	if err := r.tr.CommitLayout(h); err != nil {
		return err
	}
	r.owned = append(r.owned, h)
	return nil
}

// Close releases every derived layout this registry committed. Builtin tags
// are process-wide constants and are never freed; releases after transport
// teardown are skipped entirely.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tr.TornDown() {
		r.owned = nil
		return nil
	}

	var err error
	for _, h := range r.owned {
		err = multierr.Append(err, r.tr.FreeLayout(h))
	}
	r.owned = nil
	return err
}

// builtinType maps a primitive reflect.Kind to the seeded type carrying its
// builtin descriptor.
func builtinType(k reflect.Kind) (reflect.Type, bool) {
	switch k {
	case reflect.Int8:
		return reflect.TypeOf(int8(0)), true
	case reflect.Int16:
		return reflect.TypeOf(int16(0)), true
	case reflect.Int32:
		return reflect.TypeOf(int32(0)), true
	case reflect.Int64:
		return reflect.TypeOf(int64(0)), true
	case reflect.Uint8:
		return reflect.TypeOf(uint8(0)), true
	case reflect.Uint16:
		return reflect.TypeOf(uint16(0)), true
	case reflect.Uint32:
		return reflect.TypeOf(uint32(0)), true
	case reflect.Uint64:
		return reflect.TypeOf(uint64(0)), true
	case reflect.Float32:
		return reflect.TypeOf(float32(0)), true
	case reflect.Float64:
		return reflect.TypeOf(float64(0)), true
	case reflect.Int:
		return reflect.TypeOf(int(0)), true
	case reflect.Uint:
		return reflect.TypeOf(uint(0)), true
	case reflect.Uintptr:
		return reflect.TypeOf(uintptr(0)), true
	case reflect.Complex64:
		return reflect.TypeOf(complex64(0)), true
	case reflect.Complex128:
		return reflect.TypeOf(complex128(0)), true
	}
	return nil, false
}

var pointerSize = unsafe.Sizeof(uintptr(0))
