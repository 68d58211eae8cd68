// Package frame wraps a payload in a self-checking frame written through a
// fastbuffer writer.
//
// Layout, little-endian regardless of platform:
//
//	magic "FB" | version | flags | raw length u32 | payload length u32 | payload | crc32 u32
//
// The CRC-32 (IEEE) covers everything after the magic up to the checksum.
// With FlagZstd the payload is zstd compressed and raw length is its size
// after decompression.
package frame

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/rawbytedev/fastbuffer"
)

const (
	Version = 1

	FlagZstd byte = 0x01

	HeaderSize  = 12
	TrailerSize = 4
	Overhead    = HeaderSize + TrailerSize
)

var magic = [2]byte{'F', 'B'}

var (
	ErrNotFrame       = errors.New("frame: bad magic")
	ErrVersion        = errors.New("frame: unsupported version")
	ErrLengthMismatch = errors.New("frame: length mismatch")
	ErrChecksum       = errors.New("frame: crc mismatch")
	ErrTooLarge       = errors.New("frame: payload too large")
)

type Header struct {
	Version       byte
	Flags         byte
	RawLength     uint32
	PayloadLength uint32
}

// Options for NewEncoder.
type Options struct {
	Compress bool
	Level    zstd.EncoderLevel // Defaults to zstd.SpeedDefault.
}

// Encoder reuses its compressor and scratch space between frames.  It is not
// safe for concurrent use.
type Encoder struct {
	opts    Options
	enc     *zstd.Encoder
	scratch []byte
}

func NewEncoder(opts Options) (*Encoder, error) {
	e := &Encoder{opts: opts}
	if opts.Compress {
		level := opts.Level
		if level == 0 {
			level = zstd.SpeedDefault
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, errors.Wrap(err, "frame: zstd encoder")
		}
		e.enc = enc
	}
	return e, nil
}

// Size returns the frame size for a payload of n bytes stored uncompressed.
func Size(n int) int {
	return Overhead + n
}

// Encode appends a frame holding payload to dst.  If dst cannot hold the
// frame, the error wraps fastbuffer.ErrCapacityExceeded and dst is unchanged.
func (e *Encoder) Encode(dst *fastbuffer.Writer, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.Wrapf(ErrTooLarge, "%d bytes", len(payload))
	}

	body := payload
	var flags byte
	if e.enc != nil {
		e.scratch = e.enc.EncodeAll(payload, e.scratch[:0])
		body = e.scratch
		flags |= FlagZstd
	}

	size := Size(len(body))
	if !dst.TryBeginWrite(size) {
		return errors.Wrapf(fastbuffer.ErrCapacityExceeded, "frame of %d bytes at position %d", size, dst.Position())
	}

	b := dst.CurrentSpan().Bytes()[:size]
	b[0] = magic[0]
	b[1] = magic[1]
	b[2] = Version
	b[3] = flags
	binary.LittleEndian.PutUint32(b[4:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(b[8:], uint32(len(body)))
	copy(b[HeaderSize:], body)
	binary.LittleEndian.PutUint32(b[size-TrailerSize:], crc32.ChecksumIEEE(b[2:size-TrailerSize]))

	dst.Advance(size)
	return nil
}

// Close releases the compressor.
func (e *Encoder) Close() error {
	if e.enc == nil {
		return nil
	}
	return e.enc.Close()
}

// DefaultMaxRawLength bounds the decompressed size NewDecoder accepts.
const DefaultMaxRawLength = 1 << 28

// Decoder reuses its decompressor between frames.
type Decoder struct {
	// MaxRawLength is the largest raw length a compressed frame may declare.
	// Decompression stops once the declared length is exceeded.
	MaxRawLength uint32

	dec      *zstd.Decoder
	decLimit uint32
}

func NewDecoder() *Decoder {
	return &Decoder{MaxRawLength: DefaultMaxRawLength}
}

// ParseHeader validates the frame in data and returns its header and the
// stored payload, which is still compressed if FlagZstd is set.
func ParseHeader(data []byte) (Header, []byte, error) {
	var h Header
	if len(data) < Overhead {
		return h, nil, errors.Wrapf(ErrLengthMismatch, "%d bytes is shorter than a frame", len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] {
		return h, nil, ErrNotFrame
	}

	h.Version = data[2]
	h.Flags = data[3]
	h.RawLength = binary.LittleEndian.Uint32(data[4:])
	h.PayloadLength = binary.LittleEndian.Uint32(data[8:])

	if h.Version != Version {
		return h, nil, errors.Wrapf(ErrVersion, "%d", h.Version)
	}
	if uint64(h.PayloadLength) != uint64(len(data)-Overhead) {
		return h, nil, errors.Wrapf(ErrLengthMismatch, "payload length %d, frame holds %d", h.PayloadLength, len(data)-Overhead)
	}

	end := len(data) - TrailerSize
	if crc32.ChecksumIEEE(data[2:end]) != binary.LittleEndian.Uint32(data[end:]) {
		return h, nil, ErrChecksum
	}
	return h, data[HeaderSize:end], nil
}

// Decode validates a frame and returns its decompressed payload.  An
// uncompressed payload aliases data.
func (d *Decoder) Decode(data []byte) ([]byte, Header, error) {
	h, body, err := ParseHeader(data)
	if err != nil {
		return nil, h, err
	}

	if h.Flags&FlagZstd == 0 {
		if h.RawLength != h.PayloadLength {
			return nil, h, errors.Wrapf(ErrLengthMismatch, "raw length %d, payload length %d", h.RawLength, h.PayloadLength)
		}
		return body, h, nil
	}

	if len(body) == 0 && h.RawLength == 0 {
		return body, h, nil
	}

	if h.RawLength > d.MaxRawLength {
		return nil, h, errors.Wrapf(ErrTooLarge, "raw length %d, limit %d", h.RawLength, d.MaxRawLength)
	}

	if d.dec == nil || d.decLimit != d.MaxRawLength {
		d.Close()
		// The floor leaves room for zstd's minimum window.
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(max(uint64(d.MaxRawLength)+1, 1<<20)))
		if err != nil {
			return nil, h, errors.Wrap(err, "frame: zstd decoder")
		}
		d.dec = dec
		d.decLimit = d.MaxRawLength
	}

	if err := d.dec.Reset(bytes.NewReader(body)); err != nil {
		return nil, h, errors.Wrap(err, "frame: decompress")
	}
	// Reading one byte past the declared length detects overlong payloads.
	out, err := io.ReadAll(io.LimitReader(d.dec, int64(h.RawLength)+1))
	if err != nil {
		return nil, h, errors.Wrap(err, "frame: decompress")
	}
	if uint64(len(out)) != uint64(h.RawLength) {
		return nil, h, errors.Wrapf(ErrLengthMismatch, "raw length %d, decompressed %d", h.RawLength, len(out))
	}
	return out, h, nil
}

// Close releases the decompressor.
func (d *Decoder) Close() {
	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
}
