package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // structural layout resolution
	PhaseCommit    Phase = "commit"    // native layout build/commit
	PhaseReduce    Phase = "reduce"    // reduction operation handling
	PhaseBuffer    Phase = "buffer"    // native buffer management
	PhaseTransport Phase = "transport" // calls on the transport surface
)

// Kind categorizes the error
type Kind string

const (
	KindNativeFailure   Kind = "native_failure"
	KindAllocation      Kind = "allocation"
	KindExhausted       Kind = "exhausted"
	KindUnsupported     Kind = "unsupported"
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindUseAfterFree    Kind = "use_after_free"
	KindTornDown        Kind = "torn_down"
)

// Error is the structured error type used throughout the binding. Native
// failures carry the transport's return code in Code.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
	Code   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Kind == KindNativeFailure {
		fmt.Fprintf(&b, " (native code %d)", e.Code)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Code sets the native return code
func (b *Builder) Code(code int) *Builder {
	b.err.Code = code
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Native creates a fatal native-failure error carrying the transport's
// return code.
func Native(phase Phase, code int, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNativeFailure,
		Code:   code,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// Exhausted creates an allocator exhaustion error
func Exhausted(phase Phase, size, budget int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhausted,
		Detail: fmt.Sprintf("allocating %d bytes exceeds remaining budget %d", size, budget),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates an unknown-handle error
func NotFound(phase Phase, what string, handle uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("unknown %s handle %d", what, handle),
	}
}

// UseAfterFree creates a use-after-free invariant violation error
func UseAfterFree(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUseAfterFree,
		Detail: what,
	}
}

// TornDown creates an error for operations attempted after transport
// shutdown.
func TornDown(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTornDown,
		Detail: "transport has been shut down",
	}
}

// IsExhausted reports whether err is an allocator exhaustion failure,
// regardless of phase.
func IsExhausted(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == KindExhausted
	}
	return false
}
