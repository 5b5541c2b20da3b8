package layout

import "reflect"

// TransientTag marks struct fields excluded from the wire layout, as in
//
//	type Sample struct {
//		Scratch []float64 `mpi:"-"`
//	}
const TransientTag = "mpi"

// Field describes one struct field in host memory order.
type Field struct {
	Name   string
	Elem   reflect.Type
	Offset uintptr
	Count  int
}

// Info is the resolved in-memory layout of a type: its true byte extent as
// reported by the host runtime, and for structs the ordered field list.
type Info struct {
	Size   uintptr
	Fields []Field
}

// Resolve computes the layout of t via structural introspection. The
// offsets come straight from the runtime's own field layout, so they match
// what native code sees when handed a pointer to a value of t.
//
// Resolve reports ok=false for types with no stable wire representation:
// booleans and reference kinds. A struct field of such a type makes the
// whole struct unresolvable; construction never partially succeeds here.
func Resolve(t reflect.Type) (Info, bool) {
	if !describable(t) {
		return Info{}, false
	}

	if t.Kind() != reflect.Struct {
		return Info{Size: t.Size()}, true
	}

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if skip(f) {
			continue
		}

		elem, count, ok := fieldElem(f.Type)
		if !ok {
			return Info{}, false
		}

		fields = append(fields, Field{
			Name:   f.Name,
			Elem:   elem,
			Offset: f.Offset,
			Count:  count,
		})
	}

	return Info{Size: t.Size(), Fields: fields}, true
}

// fieldElem reduces a field type to its element type and repetition count.
// An inline fixed-size array contributes count copies of its element; the
// count is recovered from the sizes so it always agrees with the byte span
// the field actually occupies.
func fieldElem(t reflect.Type) (reflect.Type, int, bool) {
	if t.Kind() != reflect.Array {
		if !describable(t) {
			return nil, 0, false
		}
		return t, 1, true
	}

	elem := t.Elem()
	if !describable(elem) || elem.Size() == 0 {
		return nil, 0, false
	}
	return elem, int(t.Size() / elem.Size()), true
}

func skip(f reflect.StructField) bool {
	if f.Name == "_" {
		return true
	}
	return f.Tag.Get(TransientTag) == "-"
}

// describable reports whether t has a layout the transport can be told
// about. Booleans have no agreed wire representation; reference kinds have
// no fixed layout at all.
func describable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice,
		reflect.String, reflect.UnsafePointer:
		return false
	}
	return true
}
