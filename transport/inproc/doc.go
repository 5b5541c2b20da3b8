// Package inproc implements the transport call surface in pure Go: handle
// tables for layouts and operations, an arena-backed native allocator, and
// a teardown flag, all with the blocking single-call semantics the binding
// expects from the real native library.
//
// It exists so the datatype, reduce, and nbuf layers can run and be tested
// without a native dependency, and so the binding's ownership rules
// (commit-before-use, free-exactly-once, nothing-after-teardown) are
// enforced somewhere observable.
package inproc
