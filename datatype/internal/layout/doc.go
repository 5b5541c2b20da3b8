// Package layout resolves the host runtime's actual in-memory layout of Go
// value types: byte extents, field offsets, and inline-array repetition
// counts. It performs pure introspection and never touches the transport;
// committing the resulting layout is the registry's job.
package layout
