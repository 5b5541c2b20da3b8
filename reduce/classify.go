package reduce

import "reflect"

// Class buckets a type by the predefined reduction tags the transport
// accepts for it. The buckets mirror the native support matrix, not Go's
// own type hierarchy.
type Class uint8

const (
	// ClassOther supports no predefined tags; everything goes through a
	// synthesized operation.
	ClassOther Class = iota

	// ClassInteger supports min/max/sum/product plus the logical and
	// bitwise combinators.
	ClassInteger

	// ClassFloat supports only min/max/sum/product.
	ClassFloat

	// ClassByte supports only the bitwise combinators.
	ClassByte
)

var classNames = [...]string{
	ClassOther:   "other",
	ClassInteger: "integer",
	ClassFloat:   "float",
	ClassByte:    "byte",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Classify buckets t by its primitive kind and width.
func Classify(t reflect.Type) Class {
	switch t.Kind() {
	case reflect.Uint8:
		return ClassByte
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return ClassInteger
	case reflect.Float32, reflect.Float64:
		return ClassFloat
	}
	return ClassOther
}

// Permits reports whether the transport accepts operator kind k against the
// predefined tags legal for this class.
func (c Class) Permits(k Kind) bool {
	switch c {
	case ClassInteger:
		return k != KindInvalid
	case ClassFloat:
		switch k {
		case KindMax, KindMin, KindSum, KindProduct:
			return true
		}
	case ClassByte:
		switch k {
		case KindBitwiseAnd, KindBitwiseOr, KindBitwiseXor:
			return true
		}
	}
	return false
}
