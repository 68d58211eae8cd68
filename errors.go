package fastbuffer

import "errors"

var (
	// ErrCapacityExceeded is returned by the checked write path when a write
	// would go past the maximum capacity of the writer.
	ErrCapacityExceeded = errors.New("fastbuffer: writing past the end of the buffer")
	ErrInvalidSize      = errors.New("fastbuffer: invalid size")
	ErrUnknownAllocator = errors.New("fastbuffer: unknown allocator")

	// Protocol violations. These are raised with panic and indicate a
	// programming mistake rather than a runtime condition.
	ErrBitwiseContext   = errors.New("fastbuffer: cannot write bytes while in a bitwise context")
	ErrWriteNotReserved = errors.New("fastbuffer: write past the reserved region; call TryBeginWrite first")
	ErrNotPlain         = errors.New("fastbuffer: value type is not plain data")
	ErrStaleSpan        = errors.New("fastbuffer: span used after the buffer was reallocated")
	ErrDisposed         = errors.New("fastbuffer: writer already disposed")
)
