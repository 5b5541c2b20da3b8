// Package nbuf provides growable unmanaged buffers for staging native
// payloads.
//
// A Buffer owns one block of memory outside the Go heap's normal reach:
// allocated by the transport when possible, so the bytes are immediately
// usable for native transfers, or by a pinned general allocator when the
// transport's allocator is exhausted or disabled. Access is stream-like
// (io.Reader, io.Writer, io.Seeker) with explicit capacity reservation and
// geometric growth on writes past the end.
//
// Blocks are freed exactly once, through the allocator that produced them:
// deterministically via Close, or by a runtime cleanup backstop if the
// owner forgot. Both paths check the transport teardown flag before any
// native free.
package nbuf
