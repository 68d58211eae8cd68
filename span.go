package fastbuffer

// Span is a borrowed view of the unwritten part of a writer's buffer, from the
// position at the time of borrowing up to the capacity.  Bytes written into it
// are committed with Writer.Advance.
//
// A Span becomes stale when the buffer is reallocated or released; using it
// then panics with ErrStaleSpan.
type Span struct {
	w     *Writer
	gen   uint64
	start int
}

// CurrentSpan borrows the buffer at the current position.  Reserve space with
// TryBeginWrite first.
func (w *Writer) CurrentSpan() Span {
	return Span{w: w, gen: w.gen, start: w.pos}
}

// Valid reports whether the span still refers to the writer's buffer.
func (s Span) Valid() bool {
	return s.w != nil && s.w.gen == s.gen
}

// Bytes returns the borrowed memory.
func (s Span) Bytes() []byte {
	if !s.Valid() {
		panic(ErrStaleSpan)
	}
	return s.w.buf[s.start:]
}
