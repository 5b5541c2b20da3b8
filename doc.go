// Package mpibind maps Go value types onto a native message-passing
// transport's wire-level memory layout and turns Go combining functions into
// callbacks the transport can invoke during collective reductions.
//
// The root package declares the shared contracts: the Transport call
// surface, datatype and operation handles, and the reduction callback
// signature. The work happens in the subpackages:
//
//	datatype  - layout resolution and the process-wide descriptor registry
//	reduce    - reduction classification, predefined-op matching, trampolines
//	nbuf      - growable unmanaged buffers for staging native payloads
//	transport - transport implementations (inproc ships with the module)
//
// Group, communicator, and transmission layers consume the descriptors and
// operations produced here; they are deliberately outside this module.
package mpibind
