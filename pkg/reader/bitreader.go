package reader

import (
	"github.com/pkg/errors"
)

// BitReader reads bit fields in the order a fastbuffer BitWriter wrote them.
type BitReader struct {
	r      *Reader
	bitPos uint
}

// EnterBitwiseContext starts reading bits at the current position.
func (r *Reader) EnterBitwiseContext() *BitReader {
	return &BitReader{r: r}
}

func (b *BitReader) BitPosition() uint { return b.bitPos }

// ReadBit reads one bit.
func (b *BitReader) ReadBit() (bool, error) {
	v, err := b.ReadBits(1)
	return v == 1, err
}

// ReadBits reads n bits, n <= 64, into the low bits of the result.
func (b *BitReader) ReadBits(n uint) (uint64, error) {
	if n > 64 {
		return 0, errors.Wrapf(ErrInvalidCount, "%d bits", n)
	}
	if end := b.r.pos + int((b.bitPos+n+7)>>3); end > len(b.r.buf) {
		return 0, errors.Wrapf(ErrShortBuffer, "%d bits at bit position %d", n, b.bitPos)
	}

	var v uint64
	var shift uint
	for n > 0 {
		c := b.r.buf[b.r.pos+int(b.bitPos>>3)]
		off := b.bitPos & 7

		take := 8 - off
		if take > n {
			take = n
		}

		v |= uint64((c>>off)&(0xff>>(8-take))) << shift

		shift += take
		n -= take
		b.bitPos += take
	}
	return v, nil
}

// Close moves the reader to the first byte after the bits read.
func (b *BitReader) Close() {
	b.r.pos += int((b.bitPos + 7) >> 3)
	b.r = nil
}
