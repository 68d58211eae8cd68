package fastbuffer

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/rawbytedev/fastbuffer/internal/common"
)

// The Put methods and functions below write at the current position without
// checking capacity.  Call TryBeginWrite first with the total size of the
// writes; see the package documentation for what happens otherwise.

// checkPut is compiled in only with diagnostics.
func (w *Writer) checkPut(n int) {
	if w.bitwise {
		panic(ErrBitwiseContext)
	}
	if w.pos+n > w.allowedMark {
		panic(errors.Wrapf(ErrWriteNotReserved, "%d bytes at position %d, reserved up to %d", n, w.pos, w.allowedMark))
	}
}

// PutByte writes one byte.  Like every Put method it must not be called while
// a BitWriter is open; only diagnostic builds detect that, and otherwise the
// byte lands on top of the open bit fields.
func (w *Writer) PutByte(b byte) {
	if diagnostics {
		w.checkPut(1)
	}
	w.buf[w.pos] = b
	w.pos++
}

// PutBytes writes b as is, without a length prefix.  It must not be called
// while a BitWriter is open (see PutByte).
func (w *Writer) PutBytes(b []byte) {
	if diagnostics {
		w.checkPut(len(b))
	}
	w.putRaw(b)
}

// PutValue writes the in-memory representation of v.  T must be plain data
// (see SizeOf); diagnostic builds verify it.
func PutValue[T any](w *Writer, v T) {
	if diagnostics {
		mustBePlain[T]()
		w.checkPut(SizeOf[T]())
	}
	w.putRaw(valueBytes(&v))
}

// PutPartialValue writes bytesToWrite bytes of v's representation starting at
// offsetBytes.
func PutPartialValue[T any](w *Writer, v T, bytesToWrite, offsetBytes int) {
	if diagnostics {
		mustBePlain[T]()
		w.checkPut(bytesToWrite)
	}
	w.putRaw(valueBytes(&v)[offsetBytes : offsetBytes+bytesToWrite])
}

// PutSlice writes the element count of s as int32 followed by the elements'
// memory.
func PutSlice[T any](w *Writer, s []T) {
	if diagnostics {
		mustBePlain[T]()
		w.checkPut(SliceWriteSize(s))
	}
	w.putCount(len(s))
	w.putRaw(sliceBytes(s))
}

// PutString writes the character count of s as int32 followed by the
// characters.  With oneByteChars each rune is truncated to a single byte,
// which is lossless for ASCII.  Otherwise characters are UTF-16 code units in
// native byte order.
func (w *Writer) PutString(s string, oneByteChars bool) {
	if diagnostics {
		w.checkPut(StringWriteSize(s, oneByteChars))
	}
	w.putString(s, oneByteChars)
}

// PutVarUint writes x as an unsigned LEB128 varint.
func (w *Writer) PutVarUint(x uint64) {
	if diagnostics {
		w.checkPut(common.VarUintSize(x))
	}
	w.pos += common.PutVarUint(w.buf[w.pos:], x)
}

// PutVarInt writes x zig-zag encoded as a varint.
func (w *Writer) PutVarInt(x int64) {
	w.PutVarUint(common.ZigZag(x))
}

// Advance commits n bytes that were written directly into a Span.
func (w *Writer) Advance(n int) {
	if diagnostics {
		w.checkPut(n)
	}
	_ = w.buf[w.pos : w.pos+n]
	w.pos += n
}

func (w *Writer) putRaw(b []byte) {
	w.pos += copy(w.buf[w.pos:w.pos+len(b)], b)
}

func (w *Writer) putUint16(x uint16) {
	binary.NativeEndian.PutUint16(w.buf[w.pos:w.pos+2], x)
	w.pos += 2
}

func (w *Writer) putCount(n int) {
	binary.NativeEndian.PutUint32(w.buf[w.pos:w.pos+countSize], uint32(int32(n)))
	w.pos += countSize
}

func (w *Writer) putString(s string, oneByteChars bool) {
	if oneByteChars {
		n := utf8.RuneCountInString(s)
		w.putCount(n)
		if n == len(s) {
			w.pos += copy(w.buf[w.pos:w.pos+n], s)
			return
		}
		for _, r := range s {
			w.buf[w.pos] = byte(r)
			w.pos++
		}
		return
	}

	w.putCount(common.UTF16Len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			w.putUint16(uint16(r1))
			w.putUint16(uint16(r2))
		} else {
			w.putUint16(uint16(r))
		}
	}
}
