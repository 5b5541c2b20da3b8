package nbuf

import (
	"sync"
	"unsafe"

	"github.com/hpckit/mpibind"
)

// block is one unmanaged allocation together with the allocator that
// produced it. Release goes back through that same allocator, exactly once.
type block struct {
	tr       mpibind.Transport
	ptr      unsafe.Pointer
	capacity int
	native   bool
}

func (b *block) bytes() []byte {
	if b == nil || b.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.ptr), b.capacity)
}

// release frees the block through its owning allocator. Native frees are
// skipped entirely once the transport has been torn down.
func (b *block) release() {
	if b == nil || b.ptr == nil {
		return
	}
	p := b.ptr
	b.ptr = nil
	if b.native {
		if !b.tr.TornDown() {
			b.tr.FreeNativeMemory(p)
		}
		return
	}
	generalFree(p)
}

// The general unmanaged allocator: blocks pinned in a process-wide table
// keyed by address, so the memory stays valid until explicitly freed no
// matter what the collector does.
var generalBlocks sync.Map // uintptr -> []byte

func generalAlloc(n int) unsafe.Pointer {
	buf := make([]byte, n)
	p := unsafe.Pointer(&buf[0])
	generalBlocks.Store(uintptr(p), buf)
	return p
}

func generalFree(p unsafe.Pointer) {
	generalBlocks.Delete(uintptr(p))
}
