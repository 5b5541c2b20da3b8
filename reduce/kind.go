package reduce

import "github.com/hpckit/mpibind"

// Kind names a predefined operator.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindMax
	KindMin
	KindSum
	KindProduct
	KindLogicalAnd
	KindLogicalOr
	KindBitwiseAnd
	KindBitwiseOr
	KindBitwiseXor
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindMax:        "max",
	KindMin:        "min",
	KindSum:        "sum",
	KindProduct:    "product",
	KindLogicalAnd: "logical_and",
	KindLogicalOr:  "logical_or",
	KindBitwiseAnd: "bitwise_and",
	KindBitwiseOr:  "bitwise_or",
	KindBitwiseXor: "bitwise_xor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// tag returns the transport's predefined reduction tag for k.
func (k Kind) tag() mpibind.OpHandle {
	switch k {
	case KindMax:
		return mpibind.OpMax
	case KindMin:
		return mpibind.OpMin
	case KindSum:
		return mpibind.OpSum
	case KindProduct:
		return mpibind.OpProd
	case KindLogicalAnd:
		return mpibind.OpLAnd
	case KindLogicalOr:
		return mpibind.OpLOr
	case KindBitwiseAnd:
		return mpibind.OpBAnd
	case KindBitwiseOr:
		return mpibind.OpBOr
	case KindBitwiseXor:
		return mpibind.OpBXor
	}
	return mpibind.OpInvalid
}
