package fastbuffer

import (
	"github.com/pkg/errors"
)

// BitWriter writes bit fields into the writer's buffer, starting at the
// writer's position.  Bits fill each byte from the least significant end.
// While a BitWriter is open the writer rejects byte writes; Close returns
// the writer to byte alignment.
type BitWriter struct {
	w      *Writer
	ctx    uint64
	bitPos uint

	// Only maintained when diagnostics are compiled in.
	allowedBits uint
}

// EnterBitwiseContext opens a BitWriter at the current position.  It panics
// with ErrBitwiseContext if one is already open.
func (w *Writer) EnterBitwiseContext() *BitWriter {
	if w.bitwise {
		panic(ErrBitwiseContext)
	}
	w.bitwise = true
	w.bitCtx++
	return &BitWriter{w: w, ctx: w.bitCtx}
}

// commitBitwiseWrites closes the context ctx, which must be the open one.
func (w *Writer) commitBitwiseWrites(ctx uint64, n int) {
	if !w.bitwise || w.bitCtx != ctx {
		panic(ErrDisposed)
	}
	w.pos += n
	w.bitwise = false
}

// writer panics with ErrDisposed unless b's context is still open.
func (b *BitWriter) writer() *Writer {
	if b.w == nil || !b.w.bitwise || b.w.bitCtx != b.ctx {
		panic(ErrDisposed)
	}
	return b.w
}

// BitPosition is the number of bits written so far.
func (b *BitWriter) BitPosition() uint { return b.bitPos }

// BitAligned reports whether the bits written so far fill whole bytes.
func (b *BitWriter) BitAligned() bool { return b.bitPos&7 == 0 }

// TryBeginWriteBits makes sure n more bits can be written with PutBit and
// PutBits.  It reports false if the maximum capacity would be exceeded.
func (b *BitWriter) TryBeginWriteBits(n uint) bool {
	total := b.bitPos + n
	if !b.writer().ensure(int((total + 7) >> 3)) {
		return false
	}
	if diagnostics {
		b.allowedBits = total
	}
	return true
}

// PutBit writes one bit without checking capacity.
func (b *BitWriter) PutBit(bit bool) {
	var v uint64
	if bit {
		v = 1
	}
	b.PutBits(v, 1)
}

// PutBits writes the n low bits of v, n <= 64, without checking capacity.
func (b *BitWriter) PutBits(v uint64, n uint) {
	if diagnostics {
		b.writer()
		if n > 64 || b.bitPos+n > b.allowedBits {
			panic(errors.Wrapf(ErrWriteNotReserved, "%d bits at bit position %d, reserved up to %d", n, b.bitPos, b.allowedBits))
		}
	}
	b.put(v, n)
}

// WriteBit is the checked form of PutBit.
func (b *BitWriter) WriteBit(bit bool) error {
	var v uint64
	if bit {
		v = 1
	}
	return b.WriteBits(v, 1)
}

// WriteBits is the checked form of PutBits.
func (b *BitWriter) WriteBits(v uint64, n uint) error {
	if n > 64 {
		return errors.Wrapf(ErrInvalidSize, "%d bits", n)
	}
	w := b.writer()
	need := int((b.bitPos + n + 7) >> 3)
	if !w.ensure(need) {
		return w.overflow(need)
	}
	if diagnostics && b.bitPos+n > b.allowedBits {
		b.allowedBits = b.bitPos + n
	}
	b.put(v, n)
	return nil
}

func (b *BitWriter) put(v uint64, n uint) {
	buf := b.w.buf
	base := b.w.pos

	for n > 0 {
		i := base + int(b.bitPos>>3)
		off := b.bitPos & 7

		take := 8 - off
		if take > n {
			take = n
		}

		if off == 0 {
			buf[i] = 0 // Bits above the written ones stay zero.
		}
		buf[i] |= byte(v<<off) & (byte(0xff>>(8-take)) << off)

		v >>= take
		n -= take
		b.bitPos += take
	}
}

// Close advances the writer's position past every byte touched by bit writes
// and leaves the bitwise context.  The BitWriter cannot be used afterwards;
// using or closing it again panics with ErrDisposed.
func (b *BitWriter) Close() {
	if b.w == nil {
		panic(ErrDisposed)
	}
	b.w.commitBitwiseWrites(b.ctx, int((b.bitPos+7)>>3))
	b.w = nil
}
