package datatype

import (
	"reflect"

	"github.com/hpckit/mpibind"
)

// WChar is the wide character type, mapped to the transport's wide-char
// tag. It is a distinct named type so descriptors can tell it apart from
// plain int32/rune values.
type WChar int32

// Packed marks pre-serialized payload bytes. Values of this type map to the
// transport's packed tag and carry no structural description.
type Packed byte

// Field is one entry of a struct descriptor: the field's byte offset within
// the struct, its repetition count (>1 for inline fixed-size arrays), and
// the descriptor of its element type.
type Field struct {
	Name   string
	Elem   *Descriptor
	Offset uintptr
	Count  int
}

// Descriptor is a committed native layout for one Go type. Descriptors are
// immutable after construction, built at most once per distinct type, and
// owned by the registry for the lifetime of the process.
type Descriptor struct {
	typ    reflect.Type
	fields []Field
	handle mpibind.DatatypeHandle
	extent uintptr
}

// Type returns the Go type this descriptor was built for.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Handle returns the transport handle of the committed layout.
func (d *Descriptor) Handle() mpibind.DatatypeHandle { return d.handle }

// Extent returns the type's byte extent as laid out by the host runtime.
func (d *Descriptor) Extent() uintptr { return d.extent }

// Fields returns the struct fields of the layout in declaration order, or
// nil for non-struct descriptors. Callers must not mutate the result.
func (d *Descriptor) Fields() []Field { return d.fields }
