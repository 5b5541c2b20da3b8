// Package errors provides structured error types for the mpibind library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Native transport failures additionally carry the transport's
// numeric return code.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCommit, errors.KindNativeFailure).
//		GoType("pkg.Particle").
//		Code(13).
//		Detail("commit rejected").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Native(errors.PhaseCommit, 13, "commit rejected")
//	err := errors.Exhausted(errors.PhaseBuffer, 4096, 1024)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
