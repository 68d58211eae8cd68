package fastbuffer

import (
	"github.com/pkg/errors"

	"github.com/rawbytedev/fastbuffer/internal/common"
)

// The Write methods and functions below reserve space for each call, growing
// the buffer if allowed.  They return an error wrapping ErrCapacityExceeded
// when the maximum capacity would be exceeded, in which case nothing is
// written.

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(b byte) error {
	if err := w.reserve(1); err != nil {
		return err
	}
	w.buf[w.pos] = b
	w.pos++
	return nil
}

// Write implements io.Writer.  The bytes are written as is, without a length
// prefix.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.reserve(len(p)); err != nil {
		return 0, err
	}
	w.putRaw(p)
	return len(p), nil
}

// WriteValue writes the in-memory representation of v.  It panics with
// ErrNotPlain if T is not plain data.
func WriteValue[T any](w *Writer, v T) error {
	mustBePlain[T]()
	if err := w.reserve(SizeOf[T]()); err != nil {
		return err
	}
	w.putRaw(valueBytes(&v))
	return nil
}

// WritePartialValue writes bytesToWrite bytes of v's representation starting
// at offsetBytes.
func WritePartialValue[T any](w *Writer, v T, bytesToWrite, offsetBytes int) error {
	mustBePlain[T]()
	size := SizeOf[T]()
	if offsetBytes < 0 || bytesToWrite < 0 || offsetBytes > size || bytesToWrite > size-offsetBytes {
		return errors.Wrapf(ErrInvalidSize, "%d bytes at offset %d of a %d-byte value", bytesToWrite, offsetBytes, size)
	}
	if err := w.reserve(bytesToWrite); err != nil {
		return err
	}
	w.putRaw(valueBytes(&v)[offsetBytes : offsetBytes+bytesToWrite])
	return nil
}

// WriteSlice writes the element count of s as int32 followed by the elements'
// memory.
func WriteSlice[T any](w *Writer, s []T) error {
	mustBePlain[T]()
	if err := checkCount(len(s)); err != nil {
		return err
	}
	if err := w.reserve(SliceWriteSize(s)); err != nil {
		return err
	}
	w.putCount(len(s))
	w.putRaw(sliceBytes(s))
	return nil
}

// WriteString is the checked form of PutString.
func (w *Writer) WriteString(s string, oneByteChars bool) error {
	size := StringWriteSize(s, oneByteChars)
	if err := checkCount(size); err != nil {
		return err
	}
	if err := w.reserve(size); err != nil {
		return err
	}
	w.putString(s, oneByteChars)
	return nil
}

// WriteVarUint is the checked form of PutVarUint.
func (w *Writer) WriteVarUint(x uint64) error {
	if err := w.reserve(common.VarUintSize(x)); err != nil {
		return err
	}
	w.pos += common.PutVarUint(w.buf[w.pos:], x)
	return nil
}

// WriteVarInt is the checked form of PutVarInt.
func (w *Writer) WriteVarInt(x int64) error {
	return w.WriteVarUint(common.ZigZag(x))
}
