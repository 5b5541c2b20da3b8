package nbuf

import (
	"io"
	"runtime"
	"unsafe"

	"github.com/hpckit/mpibind"
	"github.com/hpckit/mpibind/errors"
)

// Buffer is a growable block of unmanaged memory with stream-like access,
// used to stage payloads for native hand-off. It maintains
//
//	0 <= position <= length <= capacity
//
// at all times. Buffers are not safe for concurrent mutation; sharing one
// across call sites needs external synchronization.
type Buffer struct {
	tr       mpibind.Transport
	blk      *block
	cleanup  runtime.Cleanup
	length   int
	position int
	noNative bool
	closed   bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithoutNativeAlloc disables the transport allocator so every block comes
// from the general unmanaged allocator.
func WithoutNativeAlloc() Option {
	return func(b *Buffer) { b.noNative = true }
}

// New returns an empty buffer bound to tr. No memory is allocated until the
// first write or Reserve.
func New(tr mpibind.Transport, opts ...Option) *Buffer {
	b := &Buffer{tr: tr}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewSize returns a buffer with capacity for at least n bytes.
func NewSize(tr mpibind.Transport, n int, opts ...Option) (*Buffer, error) {
	b := New(tr, opts...)
	if err := b.Reserve(n); err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the logical number of bytes in use.
func (b *Buffer) Len() int { return b.length }

// Cap returns the allocated capacity in bytes.
func (b *Buffer) Cap() int {
	if b.blk == nil {
		return 0
	}
	return b.blk.capacity
}

// Position returns the stream cursor.
func (b *Buffer) Position() int { return b.position }

// Pointer returns the address of the underlying block for native hand-off,
// or nil when nothing is allocated. The pointer is invalidated by any call
// that grows the buffer.
func (b *Buffer) Pointer() unsafe.Pointer {
	if b.blk == nil {
		return nil
	}
	return b.blk.ptr
}

// Native reports whether the current block came from the transport
// allocator.
func (b *Buffer) Native() bool { return b.blk != nil && b.blk.native }

// Write appends len(p) bytes at the current position, growing capacity
// geometrically when the write does not fit.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, errors.UseAfterFree(errors.PhaseBuffer, "write on closed buffer")
	}
	if len(p) == 0 {
		return 0, nil
	}

	need := b.position + len(p)
	if b.blk == nil || need > b.blk.capacity {
		grown := 2 * b.Cap()
		if grown < need {
			grown = need
		}
		if err := b.Reserve(grown); err != nil {
			return 0, err
		}
	}

	copy(b.blk.bytes()[b.position:need], p)
	b.position = need
	if b.position > b.length {
		b.length = b.position
	}
	return len(p), nil
}

// Read copies up to len(p) bytes from the current position. An over-read
// returns the remaining bytes rather than failing; at the logical end it
// returns io.EOF.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, errors.UseAfterFree(errors.PhaseBuffer, "read on closed buffer")
	}
	if len(p) == 0 {
		return 0, nil
	}
	remain := b.length - b.position
	if remain == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > remain {
		n = remain
	}
	copy(p[:n], b.blk.bytes()[b.position:b.position+n])
	b.position += n
	return n, nil
}

// Seek moves the cursor per io.Seeker. The resulting position is clamped to
// [0, Len()]; seeking before the start is an error.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.closed {
		return 0, errors.UseAfterFree(errors.PhaseBuffer, "seek on closed buffer")
	}
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.position) + offset
	case io.SeekEnd:
		pos = int64(b.length) + offset
	default:
		return 0, errors.New(errors.PhaseBuffer, errors.KindInvalidArgument).
			Detail("bad seek whence %d", whence).
			Build()
	}
	if pos < 0 {
		return 0, errors.New(errors.PhaseBuffer, errors.KindInvalidArgument).
			Detail("seek before start").
			Build()
	}
	if pos > int64(b.length) {
		pos = int64(b.length)
	}
	b.position = int(pos)
	return pos, nil
}

// Reserve resizes the buffer to exactly n bytes of capacity: a fresh block
// is always allocated, min(Len(), n) bytes carry over, and the old block is
// freed through whichever allocator produced it. Shrinking truncates the
// length and clamps the position.
func (b *Buffer) Reserve(n int) error {
	if b.closed {
		return errors.UseAfterFree(errors.PhaseBuffer, "reserve on closed buffer")
	}
	if n < 0 {
		return errors.New(errors.PhaseBuffer, errors.KindInvalidArgument).
			Detail("negative capacity %d", n).
			Build()
	}

	old := b.blk
	var fresh *block
	if n > 0 {
		var err error
		fresh, err = b.alloc(n)
		if err != nil {
			return err
		}
		if old != nil {
			carry := b.length
			if carry > n {
				carry = n
			}
			copy(fresh.bytes()[:carry], old.bytes()[:carry])
		}
	}

	b.cleanup.Stop()
	old.release()
	b.blk = fresh
	if fresh != nil {
		b.cleanup = runtime.AddCleanup(b, (*block).release, fresh)
	}

	if b.length > n {
		b.length = n
	}
	if b.position > b.length {
		b.position = b.length
	}
	return nil
}

// alloc obtains a fresh block, preferring the transport allocator and
// falling back to the general allocator on exhaustion.
func (b *Buffer) alloc(n int) (*block, error) {
	if !b.noNative {
		p, err := b.tr.AllocateNativeMemory(n)
		switch {
		case err == nil:
			return &block{tr: b.tr, ptr: p, capacity: n, native: true}, nil
		case !errors.IsExhausted(err):
			return nil, err
		}
	}
	return &block{tr: b.tr, ptr: generalAlloc(n), capacity: n}, nil
}

// Close releases the block deterministically. Closing twice is a no-op; the
// cleanup registered with the runtime is only a backstop for buffers that
// were never closed.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.cleanup.Stop()
	b.blk.release()
	b.blk = nil
	b.length = 0
	b.position = 0
	return nil
}
