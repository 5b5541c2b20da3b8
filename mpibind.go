package mpibind

import "unsafe"

// DatatypeHandle identifies a layout known to the native transport. The low
// range is reserved for the predefined tags below; derived layouts built at
// runtime are handed out from FirstDerivedHandle upward.
type DatatypeHandle uint32

// Predefined datatype tags. These mirror the transport's builtin types and
// require no commit.
const (
	TagInvalid DatatypeHandle = iota
	TagInt8
	TagInt16
	TagInt32
	TagInt64
	TagUint8
	TagUint16
	TagUint32
	TagUint64
	TagFloat
	TagDouble
	TagWChar
	TagLong
	TagByte
	TagPacked
)

// FirstDerivedHandle is the lowest handle value a transport may assign to a
// derived layout.
const FirstDerivedHandle DatatypeHandle = 64

// Predefined reports whether h names a builtin tag rather than a derived
// layout.
func (h DatatypeHandle) Predefined() bool {
	return h > TagInvalid && h < FirstDerivedHandle
}

// OpHandle identifies a reduction operation known to the native transport.
type OpHandle uint32

// Predefined reduction tags.
const (
	OpInvalid OpHandle = iota
	OpMax
	OpMin
	OpSum
	OpProd
	OpLAnd
	OpLOr
	OpBAnd
	OpBOr
	OpBXor
)

// FirstCustomOp is the lowest handle value a transport may assign to a
// registered custom operation.
const FirstCustomOp OpHandle = 64

// Predefined reports whether h names a builtin reduction tag.
func (h OpHandle) Predefined() bool {
	return h > OpInvalid && h < FirstCustomOp
}

// ReduceCallback is the signature the transport invokes during a collective
// reduction: count elements at in are combined into the count elements at
// inout. Callbacks run on the transport's own call stack and must not
// allocate unboundedly or block.
type ReduceCallback func(in, inout unsafe.Pointer, count int)

// Transport is the synchronous call surface of the native message-passing
// library. All methods block; a returned error is fatal to the operation
// that triggered the call. Implementations must be safe for concurrent use.
type Transport interface {
	// BuildStructLayout creates an uncommitted struct-like layout from
	// parallel slices of per-field repetition counts, byte offsets, and
	// element datatypes.
	BuildStructLayout(counts []int, offsets []uintptr, types []DatatypeHandle) (DatatypeHandle, error)

	// BuildContiguousLayout creates an uncommitted layout of byteLen
	// consecutive elements of elem.
	BuildContiguousLayout(byteLen int, elem DatatypeHandle) (DatatypeHandle, error)

	// CommitLayout makes a derived layout usable for transfers.
	CommitLayout(h DatatypeHandle) error

	// QueryExtent reports the byte extent of a layout or predefined tag.
	QueryExtent(h DatatypeHandle) (uintptr, error)

	// RegisterCustomOperation registers cb as a user reduction and returns
	// its handle. The transport holds only the raw callback; the caller
	// must keep cb reachable for the operation's lifetime.
	RegisterCustomOperation(cb ReduceCallback, commutative bool) (OpHandle, error)

	// FreeOperation releases a custom operation handle.
	FreeOperation(h OpHandle) error

	// FreeLayout releases a derived layout handle.
	FreeLayout(h DatatypeHandle) error

	// AllocateNativeMemory returns transport-owned memory immediately
	// usable for native transfers, or an allocation error on exhaustion.
	AllocateNativeMemory(n int) (unsafe.Pointer, error)

	// FreeNativeMemory releases memory obtained from AllocateNativeMemory.
	FreeNativeMemory(p unsafe.Pointer)

	// TornDown reports whether the transport has been shut down. Every
	// release path must consult this before calling back into the
	// transport; releases after teardown are skipped, not attempted.
	TornDown() bool
}
