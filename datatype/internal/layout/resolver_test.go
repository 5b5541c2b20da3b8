package layout

import (
	"reflect"
	"testing"
	"unsafe"
)

func TestResolvePrimitives(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		size uintptr
	}{
		{"int8", reflect.TypeOf(int8(0)), 1},
		{"int16", reflect.TypeOf(int16(0)), 2},
		{"int32", reflect.TypeOf(int32(0)), 4},
		{"int64", reflect.TypeOf(int64(0)), 8},
		{"uint8", reflect.TypeOf(uint8(0)), 1},
		{"uint16", reflect.TypeOf(uint16(0)), 2},
		{"uint32", reflect.TypeOf(uint32(0)), 4},
		{"uint64", reflect.TypeOf(uint64(0)), 8},
		{"float32", reflect.TypeOf(float32(0)), 4},
		{"float64", reflect.TypeOf(float64(0)), 8},
		{"complex128", reflect.TypeOf(complex128(0)), 16},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := Resolve(tc.typ)
			if !ok {
				t.Fatal("expected a layout")
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if len(info.Fields) != 0 {
				t.Errorf("primitive should have no fields, got %d", len(info.Fields))
			}
		})
	}
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"bool", reflect.TypeOf(false)},
		{"string", reflect.TypeOf("")},
		{"slice", reflect.TypeOf([]int{})},
		{"map", reflect.TypeOf(map[int]int{})},
		{"pointer", reflect.TypeOf(&struct{}{})},
		{"chan", reflect.TypeOf(make(chan int))},
		{"func", reflect.TypeOf(func() {})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := Resolve(tc.typ); ok {
				t.Errorf("%s should have no layout", tc.name)
			}
		})
	}
}

func TestResolveStruct(t *testing.T) {
	type point struct {
		X float64
		Y float64
		Z float64
	}

	info, ok := Resolve(reflect.TypeOf(point{}))
	if !ok {
		t.Fatal("expected a layout")
	}
	if info.Size != unsafe.Sizeof(point{}) {
		t.Errorf("size: got %d, want %d", info.Size, unsafe.Sizeof(point{}))
	}
	if len(info.Fields) != 3 {
		t.Fatalf("fields: got %d, want 3", len(info.Fields))
	}

	want := []struct {
		name   string
		offset uintptr
	}{
		{"X", 0}, {"Y", 8}, {"Z", 16},
	}
	for i, w := range want {
		f := info.Fields[i]
		if f.Name != w.name || f.Offset != w.offset || f.Count != 1 {
			t.Errorf("field %d: got {%s %d %d}, want {%s %d 1}", i, f.Name, f.Offset, f.Count, w.name, w.offset)
		}
	}
}

func TestResolveRuntimeOffsets(t *testing.T) {
	// Offsets must match what the runtime actually does, padding included.
	type padded struct {
		A int8
		B int64
		C int16
	}

	typ := reflect.TypeOf(padded{})
	info, ok := Resolve(typ)
	if !ok {
		t.Fatal("expected a layout")
	}
	var v padded
	base := uintptr(unsafe.Pointer(&v))
	wantOffsets := []uintptr{
		uintptr(unsafe.Pointer(&v.A)) - base,
		uintptr(unsafe.Pointer(&v.B)) - base,
		uintptr(unsafe.Pointer(&v.C)) - base,
	}
	for i, f := range info.Fields {
		if f.Offset != wantOffsets[i] {
			t.Errorf("field %s: offset %d, runtime says %d", f.Name, f.Offset, wantOffsets[i])
		}
	}
}

func TestResolveInlineArray(t *testing.T) {
	type mesh struct {
		Weights [11]float32
		ID      int32
	}

	info, ok := Resolve(reflect.TypeOf(mesh{}))
	if !ok {
		t.Fatal("expected a layout")
	}
	f := info.Fields[0]
	if f.Count != 11 {
		t.Errorf("array count: got %d, want 11", f.Count)
	}
	if f.Elem != reflect.TypeOf(float32(0)) {
		t.Errorf("array elem: got %v, want float32", f.Elem)
	}
}

func TestResolveSkipsFields(t *testing.T) {
	type record struct {
		Kept    int32
		_       [4]byte
		Scratch []float64 `mpi:"-"`
		Tail    int64
	}

	info, ok := Resolve(reflect.TypeOf(record{}))
	if !ok {
		t.Fatal("expected a layout")
	}
	if len(info.Fields) != 2 {
		t.Fatalf("fields: got %d, want 2", len(info.Fields))
	}
	if info.Fields[0].Name != "Kept" || info.Fields[1].Name != "Tail" {
		t.Errorf("kept fields: %s, %s", info.Fields[0].Name, info.Fields[1].Name)
	}
}

func TestResolvePoisonedStruct(t *testing.T) {
	type tagged struct {
		Value float64
		Label string
	}

	if _, ok := Resolve(reflect.TypeOf(tagged{})); ok {
		t.Error("struct with a reference field must have no layout")
	}
}

func TestResolveNestedStructField(t *testing.T) {
	type inner struct {
		A int32
		B int32
	}
	type outer struct {
		Head inner
		Tail [2]inner
	}

	info, ok := Resolve(reflect.TypeOf(outer{}))
	if !ok {
		t.Fatal("expected a layout")
	}
	if info.Fields[0].Elem != reflect.TypeOf(inner{}) || info.Fields[0].Count != 1 {
		t.Errorf("nested field: got %v x%d", info.Fields[0].Elem, info.Fields[0].Count)
	}
	if info.Fields[1].Elem != reflect.TypeOf(inner{}) || info.Fields[1].Count != 2 {
		t.Errorf("nested array field: got %v x%d", info.Fields[1].Elem, info.Fields[1].Count)
	}
}
