// Package fastbuffer implements a growable binary buffer writer with two write
// paths.
//
// The unchecked path (Put* methods and functions) performs no bounds checks of
// its own: the caller reserves space once with TryBeginWrite and then issues
// any number of writes that stay inside the reservation.  Writing past the
// reservation is a contract violation.  Builds with the fastbufferdebug tag
// detect it and panic with ErrWriteNotReserved; other builds do not check, and
// only the Go runtime's slice bounds check stops a write that leaves the
// allocation altogether.
//
// The checked path (Write* methods and functions) reserves space per call,
// grows the buffer when allowed, and returns an error wrapping
// ErrCapacityExceeded when the maximum capacity would be exceeded.
//
// Values are written in native byte order and layout.  Slices and strings are
// prefixed with an int32 element count.
//
// A Writer is not safe for concurrent use.
package fastbuffer

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "fastbuffer")

// Options for New.
type Options struct {
	// MaxSize is the capacity the writer may grow to.  Values below the
	// initial size, including zero, make the writer non-growable.
	MaxSize int

	Allocator Allocator

	// Logger receives growth and allocation events.  Defaults to a logrus
	// entry with the "fastbuffer" prefix.
	Logger logrus.FieldLogger
}

// Writer is a binary buffer writer.  It must not be copied after creation and
// must be released with Dispose.
type Writer struct {
	noCopy noCopy

	buf     []byte // len(buf) is the capacity
	initial []byte
	pos     int
	length  int
	maxCap  int
	alloc   Allocator
	grew    bool

	disposed bool
	bitwise  bool
	bitCtx   uint64 // numbers bitwise contexts
	gen      uint64

	// Only maintained when diagnostics are compiled in.
	allowedMark int

	log logrus.FieldLogger
}

// New writer with the given initial capacity.
func New(size int, opts Options) (*Writer, error) {
	if size < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "initial size %d", size)
	}

	maxSize := opts.MaxSize
	if maxSize < size {
		maxSize = size
	}

	b, err := opts.Allocator.alloc(size)
	if err != nil {
		return nil, err
	}

	l := opts.Logger
	if l == nil {
		l = log
	}

	return &Writer{
		buf:     b,
		initial: b,
		maxCap:  maxSize,
		alloc:   opts.Allocator,
		log:     l,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(size int, opts Options) *Writer {
	w, err := New(size, opts)
	if err != nil {
		panic(err)
	}
	return w
}

// Position is the offset of the next write.
func (w *Writer) Position() int { return w.pos }

// Capacity is the current allocation size.
func (w *Writer) Capacity() int { return len(w.buf) }

// MaxCapacity is the size the buffer may grow to.
func (w *Writer) MaxCapacity() int { return w.maxCap }

// Allocator that owns the writer's memory.
func (w *Writer) Allocator() Allocator { return w.alloc }

// Length is the number of bytes written so far: the larger of the current
// position and the high-water mark left by backward seeks.
func (w *Writer) Length() int {
	if w.pos > w.length {
		return w.pos
	}
	return w.length
}

// Seek moves the write position.  The target is clamped to [0, Capacity].
// Seeking backward keeps the high-water mark so Length does not shrink.
func (w *Writer) Seek(where int) {
	if where < 0 {
		where = 0
	} else if where > len(w.buf) {
		where = len(w.buf)
	}

	// Length is synchronized lazily: only here and in Truncate.
	if w.pos > w.length && where < w.pos {
		w.length = w.pos
	}
	w.pos = where
}

// Truncate the written content at the current position.
func (w *Writer) Truncate() {
	w.TruncateTo(w.pos)
}

// TruncateTo pulls the position and the length back to where, if they are
// beyond it.  Capacity is unchanged.
func (w *Writer) TruncateTo(where int) {
	if where < 0 {
		where = 0
	}
	if w.pos > where {
		w.pos = where
	}
	if w.length > where {
		w.length = where
	}
}

// Reset the writer for reuse without releasing memory.
func (w *Writer) Reset() {
	w.pos = 0
	w.length = 0
}

// Dispose releases the writer's memory.  The writer must not be used
// afterwards; calling Dispose twice panics with ErrDisposed.
func (w *Writer) Dispose() {
	if w.disposed {
		panic(ErrDisposed)
	}

	if w.grew {
		w.release(w.buf)
	}
	w.release(w.initial)

	w.buf = nil
	w.initial = nil
	w.pos = 0
	w.length = 0
	w.maxCap = 0
	w.grew = false
	w.disposed = true
	w.gen++
}

func (w *Writer) release(b []byte) {
	if err := w.alloc.free(b); err != nil {
		w.log.WithError(err).WithField("allocator", w.alloc).Warn("releasing buffer failed")
	}
}

// ToArray returns a copy of the written content.
func (w *Writer) ToArray() []byte {
	b := make([]byte, w.Length())
	copy(b, w.buf)
	return b
}

// Bytes returns the written content without copying.  The slice aliases the
// backing store and is invalidated by growth and Dispose.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.Length():w.Length()]
}

// CopyTo appends the bytes before this writer's position to other through the
// checked path.
func (w *Writer) CopyTo(other *Writer) error {
	return other.appendFrom(w, w.pos)
}

// CopyFrom appends the bytes before other's position to this writer through
// the checked path.
func (w *Writer) CopyFrom(other *Writer) error {
	return w.appendFrom(other, other.pos)
}

func (w *Writer) appendFrom(src *Writer, n int) error {
	if err := w.reserve(n); err != nil {
		return err
	}
	// Taken after reserving: src may be w, whose buffer may just have moved.
	copy(w.buf[w.pos:], src.buf[:n])
	w.pos += n
	return nil
}

// WriteTo implements io.WriterTo.  It writes the content up to Length.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf[:w.Length()])
	return int64(n), err
}

// TryBeginWrite makes sure the next n bytes can be written with the unchecked
// Put methods.  It grows the buffer if needed and reports false, without
// allocating, if the write would exceed the maximum capacity.
func (w *Writer) TryBeginWrite(n int) bool {
	if w.bitwise {
		panic(ErrBitwiseContext)
	}
	if !w.ensure(n) {
		return false
	}
	if diagnostics {
		w.allowedMark = w.pos + n
	}
	return true
}

// TryBeginWriteValue is TryBeginWrite for the size of v.
func TryBeginWriteValue[T any](w *Writer, v T) bool {
	return w.TryBeginWrite(SizeOf[T]())
}

// reserve is the checked path's reservation.  Unlike TryBeginWrite it never
// lowers the diagnostic write mark.
func (w *Writer) reserve(n int) error {
	if w.bitwise {
		panic(ErrBitwiseContext)
	}
	if !w.ensure(n) {
		return w.overflow(n)
	}
	if diagnostics && w.pos+n > w.allowedMark {
		w.allowedMark = w.pos + n
	}
	return nil
}

// ensure reports whether n more bytes fit at the current position, growing
// the buffer if necessary.
func (w *Writer) ensure(n int) bool {
	end := w.pos + n
	if n < 0 || end < w.pos {
		return false
	}
	if end <= len(w.buf) {
		return true
	}
	if end > w.maxCap {
		return false
	}
	if err := w.grow(n); err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"allocator": w.alloc,
			"capacity":  len(w.buf),
			"required":  end,
		}).Warn("growing buffer failed")
		return false
	}
	return true
}

func (w *Writer) overflow(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrInvalidSize, "write of %d bytes", n)
	}
	return errors.Wrapf(ErrCapacityExceeded, "%d bytes at position %d, max capacity %d", n, w.pos, w.maxCap)
}

// noCopy may be embedded into structs which must not be copied after first
// use.  Detected by go vet's copylocks checker.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
