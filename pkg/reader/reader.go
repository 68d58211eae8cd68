// Package reader decodes data produced by fastbuffer writers: native-order
// plain values, int32-counted slices and strings, varints and bit fields.
package reader

import (
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf16"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/rawbytedev/fastbuffer/internal/common"
)

var (
	ErrShortBuffer  = errors.New("reader: not enough data")
	ErrInvalidCount = errors.New("reader: invalid element count")
	ErrBadVarint    = errors.New("reader: malformed varint")
	ErrNotPlain     = errors.New("reader: value type is not plain data")
)

// Reader reads from a byte slice.  Slices returned by ReadBytes alias it.
type Reader struct {
	buf []byte
	pos int
}

func New(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Position() int  { return r.pos }
func (r *Reader) Len() int       { return len(r.buf) }
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Seek clamps where to [0, Len].
func (r *Reader) Seek(where int) {
	if where < 0 {
		where = 0
	} else if where > len(r.buf) {
		where = len(r.buf)
	}
	r.pos = where
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.pos {
		return nil, errors.Wrapf(ErrShortBuffer, "%d bytes at position %d of %d", n, r.pos, len(r.buf))
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

// ReadBytes returns the next n bytes without copying.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// ReadValue reads a plain value of type T in native layout.
func ReadValue[T any](r *Reader) (T, error) {
	var v T
	if t, ok := common.Plain[T](); !ok {
		return v, errors.Wrapf(ErrNotPlain, "%s", t)
	}
	b, err := r.take(int(unsafe.Sizeof(v)))
	if err != nil {
		return v, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v)), b)
	return v, nil
}

func (r *Reader) readCount() (int, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	n := int32(binary.NativeEndian.Uint32(b))
	if n < 0 {
		r.pos -= 4
		return 0, errors.Wrapf(ErrInvalidCount, "%d at position %d", n, r.pos)
	}
	return int(n), nil
}

// ReadSlice reads an int32 element count followed by that many plain values.
func ReadSlice[T any](r *Reader) ([]T, error) {
	var zero T
	if t, ok := common.Plain[T](); !ok {
		return nil, errors.Wrapf(ErrNotPlain, "%s", t)
	}
	start := r.pos
	n, err := r.readCount()
	if err != nil {
		return nil, err
	}
	size := int(unsafe.Sizeof(zero))
	if size != 0 && n > (len(r.buf)-r.pos)/size {
		r.pos = start
		return nil, errors.Wrapf(ErrShortBuffer, "%d elements of %d bytes at position %d", n, size, r.pos)
	}
	b, _ := r.take(n * size)
	s := make([]T, n)
	if n > 0 && size > 0 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n*size), b)
	}
	return s, nil
}

// ReadString reads a string written with the same oneByteChars setting.  In
// one-byte mode each byte becomes one rune.
func (r *Reader) ReadString(oneByteChars bool) (string, error) {
	start := r.pos
	n, err := r.readCount()
	if err != nil {
		return "", err
	}

	if oneByteChars {
		b, err := r.take(n)
		if err != nil {
			r.pos = start
			return "", err
		}
		var sb strings.Builder
		sb.Grow(n)
		for _, c := range b {
			sb.WriteRune(rune(c))
		}
		return sb.String(), nil
	}

	if n > (len(r.buf)-r.pos)/2 {
		r.pos = start
		return "", errors.Wrapf(ErrShortBuffer, "%d UTF-16 units at position %d", n, r.pos)
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.NativeEndian.Uint16(r.buf[r.pos:])
		r.pos += 2
	}
	return string(utf16.Decode(units)), nil
}

// ReadVarUint reads an unsigned LEB128 varint.
func (r *Reader) ReadVarUint() (uint64, error) {
	x, n := common.ReadVarUint(r.buf[r.pos:])
	if n == 0 {
		return 0, errors.Wrapf(ErrBadVarint, "at position %d", r.pos)
	}
	r.pos += n
	return x, nil
}

// ReadVarInt reads a zig-zag encoded varint.
func (r *Reader) ReadVarInt() (int64, error) {
	x, err := r.ReadVarUint()
	return common.UnZigZag(x), err
}
