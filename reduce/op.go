package reduce

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hpckit/mpibind"
	"github.com/hpckit/mpibind/errors"
)

// Operation is a reduction usable in collective calls: either a reference
// to a predefined transport tag, or an owned custom operation backed by a
// synthesized trampoline. Custom operations retain their trampoline for as
// long as they live, because the transport holds only the raw callback.
//
// An Operation is exclusively owned by whoever built it and is released
// exactly once via Free.
type Operation struct {
	tr         mpibind.Transport
	trampoline mpibind.ReduceCallback
	handle     mpibind.OpHandle
	kind       Kind
	predefined bool
	freed      atomic.Bool
}

// Handle returns the transport handle to pass into collective calls.
func (o *Operation) Handle() mpibind.OpHandle { return o.handle }

// Predefined reports whether the operation references a builtin tag rather
// than an owned custom registration.
func (o *Operation) Predefined() bool { return o.predefined }

// Free releases the custom operation handle, if one was created. Predefined
// operations are process-wide constants and are never freed. A second call
// is a no-op, and nothing reaches the transport after teardown.
func (o *Operation) Free() {
	if o.freed.Swap(true) {
		return
	}
	o.trampoline = nil
	if o.predefined {
		return
	}
	if o.tr.TornDown() {
		return
	}
	if err := o.tr.FreeOperation(o.handle); err != nil {
		Logger().Warn("free operation failed", zap.Uint32("handle", uint32(o.handle)), zap.Error(err))
	}
}

// New builds a ReductionOperation for the combining function f over T.
//
// When f is, by identity, one of the canonical operators returned by Sum,
// Min, and friends, and T's classification permits that operator kind, the
// result references the corresponding predefined tag and owns nothing.
// Everything else falls through to synthesis silently, a disallowed
// predefined kind included: a trampoline around f is registered with the
// transport as a commutative custom operation.
func New[T any](tr mpibind.Transport, f Func[T]) (*Operation, error) {
	return build(tr, f, true)
}

// NewNoncommutative is New for combining functions whose result depends on
// operand order. Predefined matching is skipped since every predefined tag
// is commutative.
func NewNoncommutative[T any](tr mpibind.Transport, f Func[T]) (*Operation, error) {
	return build(tr, f, false)
}

func build[T any](tr mpibind.Transport, f Func[T], commutative bool) (*Operation, error) {
	if f == nil {
		return nil, errors.New(errors.PhaseReduce, errors.KindInvalidArgument).
			GoType(typeOf[T]().String()).
			Detail("nil combining function").
			Build()
	}

	typ := typeOf[T]()
	if commutative {
		if k, ok := matchCanonical(f); ok && Classify(typ).Permits(k) {
			Logger().Debug("predefined reduction",
				zap.String("type", typ.String()),
				zap.String("kind", k.String()))
			return &Operation{tr: tr, handle: k.tag(), kind: k, predefined: true}, nil
		}
	}

	cb := Trampoline(f)
	h, err := tr.RegisterCustomOperation(cb, commutative)
	if err != nil {
		return nil, err
	}
	Logger().Debug("custom reduction registered",
		zap.String("type", typ.String()),
		zap.Uint32("handle", uint32(h)))
	return &Operation{tr: tr, handle: h, trampoline: cb}, nil
}
