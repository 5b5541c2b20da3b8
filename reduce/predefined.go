package reduce

import (
	"reflect"
	"sync"
)

// Func is a binary combining function over T.
type Func[T any] func(a, b T) T

// Integer constrains T to the integer kinds.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Real constrains T to the ordered numeric kinds.
type Real interface {
	Integer | ~float32 | ~float64
}

// Numeric constrains T to everything addition and multiplication work on,
// complex types included.
type Numeric interface {
	Real | ~complex64 | ~complex128
}

// Each predefined operator has at most one canonical instance per element
// type, built on first request and cached so the builder can recognize it
// by identity afterwards.
var canonicals sync.Map // canonicalKey -> Func[T]

type canonicalKey struct {
	typ  reflect.Type
	kind Kind
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func canonical[T any](k Kind, f Func[T]) Func[T] {
	key := canonicalKey{typ: typeOf[T](), kind: k}
	if v, ok := canonicals.Load(key); ok {
		return v.(Func[T])
	}
	v, _ := canonicals.LoadOrStore(key, f)
	return v.(Func[T])
}

// matchCanonical reports which operator kind f is the canonical instance
// of, if any. Matching is by function identity, not behavior.
func matchCanonical[T any](f Func[T]) (Kind, bool) {
	fp := reflect.ValueOf(f).Pointer()
	typ := typeOf[T]()
	for k := KindMax; k <= KindBitwiseXor; k++ {
		if v, ok := canonicals.Load(canonicalKey{typ: typ, kind: k}); ok {
			if reflect.ValueOf(v).Pointer() == fp {
				return k, true
			}
		}
	}
	return KindInvalid, false
}

// Sum returns the canonical addition operator for T.
func Sum[T Numeric]() Func[T] {
	return canonical(KindSum, func(a, b T) T { return a + b })
}

// Product returns the canonical multiplication operator for T.
func Product[T Numeric]() Func[T] {
	return canonical(KindProduct, func(a, b T) T { return a * b })
}

// Min returns the canonical minimum operator for T. Equal operands yield
// the second operand; callers relying on which instance survives a tie get
// the same answer the native tags give.
func Min[T Real]() Func[T] {
	return canonical(KindMin, func(a, b T) T {
		if a < b {
			return a
		}
		return b
	})
}

// Max returns the canonical maximum operator for T. Equal operands yield
// the first operand, the mirror of Min's tie-break.
func Max[T Real]() Func[T] {
	return canonical(KindMax, func(a, b T) T {
		if a < b {
			return b
		}
		return a
	})
}

// LogicalAnd returns the canonical logical conjunction over integers, with
// zero as false and one as true.
func LogicalAnd[T Integer]() Func[T] {
	return canonical(KindLogicalAnd, func(a, b T) T {
		if a != 0 && b != 0 {
			return 1
		}
		return 0
	})
}

// LogicalOr returns the canonical logical disjunction over integers.
func LogicalOr[T Integer]() Func[T] {
	return canonical(KindLogicalOr, func(a, b T) T {
		if a != 0 || b != 0 {
			return 1
		}
		return 0
	})
}

// BitwiseAnd returns the canonical bitwise conjunction operator for T.
func BitwiseAnd[T Integer]() Func[T] {
	return canonical(KindBitwiseAnd, func(a, b T) T { return a & b })
}

// BitwiseOr returns the canonical bitwise disjunction operator for T.
func BitwiseOr[T Integer]() Func[T] {
	return canonical(KindBitwiseOr, func(a, b T) T { return a | b })
}

// BitwiseXor returns the canonical bitwise exclusive-or operator for T.
func BitwiseXor[T Integer]() Func[T] {
	return canonical(KindBitwiseXor, func(a, b T) T { return a ^ b })
}
