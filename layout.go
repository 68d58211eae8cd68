package fastbuffer

import (
	"math"
	"unicode/utf8"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/rawbytedev/fastbuffer/internal/common"
)

// countSize is the width of the element count in front of slices and strings.
const countSize = 4

// SizeOf returns the number of bytes a value of type T occupies on the wire.
// This is its in-memory size, padding included, and so depends on the
// platform.
func SizeOf[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// SliceWriteSize returns the number of bytes WriteSlice uses for s.
func SliceWriteSize[T any](s []T) int {
	return countSize + len(s)*SizeOf[T]()
}

// StringWriteSize returns the number of bytes WriteString uses for s.
func StringWriteSize(s string, oneByteChars bool) int {
	if oneByteChars {
		return countSize + utf8.RuneCountInString(s)
	}
	return countSize + 2*common.UTF16Len(s)
}

// VarUintSize returns the number of bytes WriteVarUint uses for x.
func VarUintSize(x uint64) int {
	return common.VarUintSize(x)
}

// VarIntSize returns the number of bytes WriteVarInt uses for x.
func VarIntSize(x int64) int {
	return common.VarUintSize(common.ZigZag(x))
}

// mustBePlain panics with ErrNotPlain if T holds pointers, slices, strings or
// other values whose bytes are not the value itself.
func mustBePlain[T any]() {
	if t, ok := common.Plain[T](); !ok {
		panic(errors.Wrapf(ErrNotPlain, "%s", t))
	}
}

func checkCount(n int) error {
	if n > math.MaxInt32 {
		return errors.Wrapf(ErrInvalidSize, "element count %d", n)
	}
	return nil
}

// valueBytes aliases the memory of *v.
func valueBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// sliceBytes aliases the memory of the elements of s.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*SizeOf[T]())
}
