package reduce

import (
	"unsafe"

	"github.com/hpckit/mpibind"
)

// Trampoline wraps f in the transport's reduction-callback signature: for
// each index i in [0, count), inout[i] = f(in[i], inout[i]), with both
// pointers advanced by T's byte size per element.
//
// The returned callback runs on the native call stack mid-collective, so it
// allocates nothing and never blocks; any failure there would be
// unrecoverable.
func Trampoline[T any](f Func[T]) mpibind.ReduceCallback {
	var zero T
	size := unsafe.Sizeof(zero)
	return func(in, inout unsafe.Pointer, count int) {
		for i := 0; i < count; i++ {
			dst := (*T)(inout)
			*dst = f(*(*T)(in), *dst)
			in = unsafe.Add(in, size)
			inout = unsafe.Add(inout, size)
		}
	}
}
