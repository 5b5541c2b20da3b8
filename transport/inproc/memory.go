package inproc

import (
	"unsafe"

	"github.com/hpckit/mpibind/errors"
)

// AllocateNativeMemory hands out a block from the arena. Blocks are pinned
// in the address-keyed table so they stay valid until freed; the budget, if
// set, makes exhaustion observable to callers that have a fallback.
func (t *Transport) AllocateNativeMemory(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, errors.New(errors.PhaseTransport, errors.KindNativeFailure).
			Code(codeBadArgument).
			Detail("non-positive allocation size %d", n).
			Build()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.down.Load() {
		return nil, tornDownErr()
	}
	if t.budget >= 0 && t.used+n > t.budget {
		return nil, errors.Exhausted(errors.PhaseTransport, n, t.budget-t.used)
	}

	buf := make([]byte, n)
	p := unsafe.Pointer(&buf[0])
	t.blocks[uintptr(p)] = buf
	t.used += n
	return p, nil
}

// FreeNativeMemory returns a block to the arena. Foreign or already-freed
// pointers are ignored; the binding's invariants are enforced above this
// layer.
func (t *Transport) FreeNativeMemory(p unsafe.Pointer) {
	if p == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.blocks[uintptr(p)]
	if !ok {
		return
	}
	delete(t.blocks, uintptr(p))
	t.used -= len(buf)
}

// LiveBlocks reports the number of outstanding allocations.
func (t *Transport) LiveBlocks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.blocks)
}
