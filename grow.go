package fastbuffer

import (
	"github.com/sirupsen/logrus"
)

// grow reallocates so that additional bytes fit at the current position.  The
// caller has checked that the result fits within the maximum capacity.
//
// Any slice previously obtained from the backing store (Bytes, Span) refers to
// the old region afterwards, which may be unmapped or recycled.
func (w *Writer) grow(additional int) error {
	need := w.pos + additional

	size := len(w.buf) * 2
	if size < 1 {
		size = 1
	}
	for size < need {
		if size > w.maxCap/2 {
			size = w.maxCap
			break
		}
		size *= 2
	}
	if size > w.maxCap {
		size = w.maxCap
	}

	b, err := w.alloc.alloc(size)
	if err != nil {
		return err
	}

	old := w.buf
	keep := w.Length()
	if w.bitwise {
		keep = len(old) // Open bit writes live past the position.
	}
	copy(b, old[:keep])

	// The initial region is released only by Dispose.
	if w.grew {
		w.release(old)
	}

	w.buf = b
	w.grew = true
	w.gen++

	w.log.WithFields(logrus.Fields{
		"allocator": w.alloc,
		"from":      len(old),
		"to":        size,
	}).Debug("buffer grew")

	return nil
}
