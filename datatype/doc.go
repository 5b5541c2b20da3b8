// Package datatype reconstructs native layout descriptors for Go value
// types and caches them process-wide.
//
// The registry answers one question: given a Go type, what does the native
// transport need to know to move values of that type without serialization?
// For value types the answer is a committed derived layout built from the
// runtime's actual field offsets; for booleans and reference types there is
// no answer, and Lookup returns a nil descriptor so a generic fallback can
// take over at a higher layer.
//
// Descriptors live until the registry is closed; individual layouts are
// never released mid-run.
package datatype
