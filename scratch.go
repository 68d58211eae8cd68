package fastbuffer

// DefaultScratchSize is the capacity of SharedScratch.
const DefaultScratchSize = 65535

// Scratch is a reusable snapshot area.  It holds one snapshot at a time: each
// TempBytes call into a Scratch overwrites whatever the previous call, from
// any writer, returned.  It is not safe for concurrent use.
type Scratch struct {
	buf []byte
}

func NewScratch(size int) *Scratch {
	return &Scratch{buf: make([]byte, size)}
}

// SharedScratch is a process-wide Scratch for callers that want to share a
// single snapshot area between all of their writers.
var SharedScratch = NewScratch(DefaultScratchSize)

// Cap is the largest snapshot the scratch area can hold.
func (s *Scratch) Cap() int { return len(s.buf) }

// TempBytes copies the written content into s and returns a view of it.  The
// view is valid until the next TempBytes call with the same Scratch.  If s is
// nil or too small, a newly allocated copy is returned instead.
func (w *Writer) TempBytes(s *Scratch) []byte {
	n := w.Length()
	if s == nil || n > len(s.buf) {
		return w.ToArray()
	}
	copy(s.buf, w.buf[:n])
	return s.buf[:n:n]
}
