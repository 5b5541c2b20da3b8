package datatype

import (
	"reflect"

	"github.com/hpckit/mpibind"
)

// seedBuiltins installs the descriptors that need no structural resolution:
// fixed-width numerics mapped straight to predefined tags, the wide char
// and packed markers, pointer-sized integers, and the extended-precision
// types built as opaque byte blobs.
func (r *Registry) seedBuiltins() error {
	fixed := []struct {
		typ reflect.Type
		tag mpibind.DatatypeHandle
	}{
		{reflect.TypeOf(int8(0)), mpibind.TagInt8},
		{reflect.TypeOf(int16(0)), mpibind.TagInt16},
		{reflect.TypeOf(int32(0)), mpibind.TagInt32},
		{reflect.TypeOf(int64(0)), mpibind.TagInt64},
		{reflect.TypeOf(uint8(0)), mpibind.TagUint8},
		{reflect.TypeOf(uint16(0)), mpibind.TagUint16},
		{reflect.TypeOf(uint32(0)), mpibind.TagUint32},
		{reflect.TypeOf(uint64(0)), mpibind.TagUint64},
		{reflect.TypeOf(float32(0)), mpibind.TagFloat},
		{reflect.TypeOf(float64(0)), mpibind.TagDouble},
		{reflect.TypeOf(WChar(0)), mpibind.TagWChar},
		{reflect.TypeOf(Packed(0)), mpibind.TagPacked},
	}
	for _, b := range fixed {
		r.cache[b.typ] = &Descriptor{typ: b.typ, handle: b.tag, extent: b.typ.Size()}
	}

	// Pointer-sized integers ride the native "long" tag when its reported
	// extent matches the host pointer size; otherwise they become opaque
	// blobs so the byte extent is still exact.
	longExtent, err := r.tr.QueryExtent(mpibind.TagLong)
	if err != nil {
		return err
	}
	pointerSized := []reflect.Type{
		reflect.TypeOf(int(0)),
		reflect.TypeOf(uint(0)),
		reflect.TypeOf(uintptr(0)),
	}
	for _, t := range pointerSized {
		if longExtent == pointerSize {
			r.cache[t] = &Descriptor{typ: t, handle: mpibind.TagLong, extent: t.Size()}
			continue
		}
		if err := r.seedBlob(t); err != nil {
			return err
		}
	}

	// Extended-precision types have host representations but no transport
	// tag; exact size matching is all that is required.
	for _, t := range []reflect.Type{
		reflect.TypeOf(complex64(0)),
		reflect.TypeOf(complex128(0)),
	} {
		if err := r.seedBlob(t); err != nil {
			return err
		}
	}

	return nil
}

// seedBlob commits a contiguous run of t.Size() raw bytes: a layout with no
// internal structure, used when only the extent matters.
func (r *Registry) seedBlob(t reflect.Type) error {
	h, err := r.tr.BuildContiguousLayout(int(t.Size()), mpibind.TagByte)
	if err != nil {
		return err
	}
	if err := r.commit(h); err != nil {
		return err
	}
	r.cache[t] = &Descriptor{typ: t, handle: h, extent: t.Size()}
	return nil
}
