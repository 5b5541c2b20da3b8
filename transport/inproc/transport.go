package inproc

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/hpckit/mpibind"
	"github.com/hpckit/mpibind/errors"
)

// Native return codes surfaced through classified errors.
const (
	codeBadHandle   = 1
	codeBadArgument = 2
	codeUncommitted = 3
	codeTornDown    = 4
)

type layoutRecord struct {
	counts    []int
	offsets   []uintptr
	types     []mpibind.DatatypeHandle
	extent    uintptr
	committed bool
}

type opRecord struct {
	cb          mpibind.ReduceCallback
	commutative bool
}

// Transport is a pure-Go reference implementation of the native call
// surface: layout and operation handles live in mutex-guarded tables, and
// native memory comes from an arena that pins blocks by address. It backs
// local runs and the test suite; a cgo-backed implementation would sit
// beside it unchanged in shape.
type Transport struct {
	mu         sync.Mutex
	layouts    map[mpibind.DatatypeHandle]*layoutRecord
	ops        map[mpibind.OpHandle]*opRecord
	blocks     map[uintptr][]byte
	nextLayout mpibind.DatatypeHandle
	nextOp     mpibind.OpHandle
	budget     int
	used       int
	down       atomic.Bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithMemoryLimit caps the arena at n bytes so allocator exhaustion is
// reachable. Unlimited by default.
func WithMemoryLimit(n int) Option {
	return func(t *Transport) { t.budget = n }
}

// New creates an in-process transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		layouts:    make(map[mpibind.DatatypeHandle]*layoutRecord),
		ops:        make(map[mpibind.OpHandle]*opRecord),
		blocks:     make(map[uintptr][]byte),
		nextLayout: mpibind.FirstDerivedHandle,
		nextOp:     mpibind.FirstCustomOp,
		budget:     -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// predefinedExtents mirrors an LP64/ILP32 host: the long tag tracks the
// pointer size.
func predefinedExtent(h mpibind.DatatypeHandle) (uintptr, bool) {
	switch h {
	case mpibind.TagInt8, mpibind.TagUint8, mpibind.TagByte, mpibind.TagPacked:
		return 1, true
	case mpibind.TagInt16, mpibind.TagUint16:
		return 2, true
	case mpibind.TagInt32, mpibind.TagUint32, mpibind.TagFloat, mpibind.TagWChar:
		return 4, true
	case mpibind.TagInt64, mpibind.TagUint64, mpibind.TagDouble:
		return 8, true
	case mpibind.TagLong:
		return unsafe.Sizeof(uintptr(0)), true
	}
	return 0, false
}

func (t *Transport) BuildStructLayout(counts []int, offsets []uintptr, types []mpibind.DatatypeHandle) (mpibind.DatatypeHandle, error) {
	if len(counts) != len(offsets) || len(counts) != len(types) {
		return 0, errors.New(errors.PhaseTransport, errors.KindNativeFailure).
			Code(codeBadArgument).
			Detail("mismatched field slice lengths").
			Build()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return 0, tornDownErr()
	}

	rec := &layoutRecord{
		counts:  append([]int(nil), counts...),
		offsets: append([]uintptr(nil), offsets...),
		types:   append([]mpibind.DatatypeHandle(nil), types...),
	}
	for i := range counts {
		if counts[i] <= 0 {
			return 0, errors.New(errors.PhaseTransport, errors.KindNativeFailure).
				Code(codeBadArgument).
				Detail("non-positive repetition count %d", counts[i]).
				Build()
		}
		ext, err := t.extentLocked(types[i])
		if err != nil {
			return 0, err
		}
		if end := offsets[i] + uintptr(counts[i])*ext; end > rec.extent {
			rec.extent = end
		}
	}

	h := t.nextLayout
	t.nextLayout++
	t.layouts[h] = rec
	return h, nil
}

func (t *Transport) BuildContiguousLayout(byteLen int, elem mpibind.DatatypeHandle) (mpibind.DatatypeHandle, error) {
	if byteLen < 0 {
		return 0, errors.New(errors.PhaseTransport, errors.KindNativeFailure).
			Code(codeBadArgument).
			Detail("negative byte length").
			Build()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return 0, tornDownErr()
	}
	if _, err := t.extentLocked(elem); err != nil {
		return 0, err
	}

	h := t.nextLayout
	t.nextLayout++
	t.layouts[h] = &layoutRecord{extent: uintptr(byteLen)}
	return h, nil
}

func (t *Transport) CommitLayout(h mpibind.DatatypeHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return tornDownErr()
	}
	rec, ok := t.layouts[h]
	if !ok {
		return badHandleErr(uint32(h))
	}
	rec.committed = true
	return nil
}

func (t *Transport) QueryExtent(h mpibind.DatatypeHandle) (uintptr, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.extentLocked(h)
}

func (t *Transport) extentLocked(h mpibind.DatatypeHandle) (uintptr, error) {
	if ext, ok := predefinedExtent(h); ok {
		return ext, nil
	}
	if rec, ok := t.layouts[h]; ok {
		return rec.extent, nil
	}
	return 0, badHandleErr(uint32(h))
}

// Committed reports whether h names a committed derived layout.
func (t *Transport) Committed(h mpibind.DatatypeHandle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.layouts[h]
	return ok && rec.committed
}

func (t *Transport) FreeLayout(h mpibind.DatatypeHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return tornDownErr()
	}
	if _, ok := t.layouts[h]; !ok {
		return badHandleErr(uint32(h))
	}
	delete(t.layouts, h)
	return nil
}

func (t *Transport) RegisterCustomOperation(cb mpibind.ReduceCallback, commutative bool) (mpibind.OpHandle, error) {
	if cb == nil {
		return 0, errors.New(errors.PhaseTransport, errors.KindNativeFailure).
			Code(codeBadArgument).
			Detail("nil callback").
			Build()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return 0, tornDownErr()
	}

	h := t.nextOp
	t.nextOp++
	t.ops[h] = &opRecord{cb: cb, commutative: commutative}
	Logger().Debug("custom operation registered",
		zap.Uint32("handle", uint32(h)),
		zap.Bool("commutative", commutative))
	return h, nil
}

func (t *Transport) FreeOperation(h mpibind.OpHandle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return tornDownErr()
	}
	if _, ok := t.ops[h]; !ok {
		return badHandleErr(uint32(h))
	}
	delete(t.ops, h)
	return nil
}

// Invoke runs a registered custom operation's callback the way a collective
// would: count elements at in combined into count elements at inout, on the
// caller's stack.
func (t *Transport) Invoke(h mpibind.OpHandle, in, inout unsafe.Pointer, count int) error {
	t.mu.Lock()
	rec, ok := t.ops[h]
	t.mu.Unlock()
	if !ok {
		return badHandleErr(uint32(h))
	}
	rec.cb(in, inout, count)
	return nil
}

// Shutdown sets the process-wide teardown flag and drops every live handle
// and block. All later release calls turn into no-ops at the caller side.
func (t *Transport) Shutdown() {
	t.down.Store(true)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.layouts = make(map[mpibind.DatatypeHandle]*layoutRecord)
	t.ops = make(map[mpibind.OpHandle]*opRecord)
	t.blocks = make(map[uintptr][]byte)
	t.used = 0
	Logger().Info("transport shut down")
}

func (t *Transport) TornDown() bool {
	return t.down.Load()
}

func tornDownErr() *errors.Error {
	return errors.New(errors.PhaseTransport, errors.KindNativeFailure).
		Code(codeTornDown).
		Detail("transport has been shut down").
		Build()
}

func badHandleErr(h uint32) *errors.Error {
	return errors.New(errors.PhaseTransport, errors.KindNativeFailure).
		Code(codeBadHandle).
		Detail("unknown handle %d", h).
		Build()
}
