package main

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/fastbuffer"
	"github.com/rawbytedev/fastbuffer/pkg/reader"
)

const sampleScript = `
items:
  - {type: u8, value: 255}
  - {type: i32, value: -1}
  - {type: f64, value: 2.5}
  - {type: bool, value: true}
  - {type: "[]u16", value: [1, 2, 3]}
  - {type: ascii, value: hello}
  - {type: string, value: "héllo"}
  - {type: bytes, value: "cafe"}
  - {type: varuint, value: 300}
  - {type: varint, value: -2}
  - {type: bits, value: 5, bits: 3}
  - {type: u16, value: 7}
`

func encodeSample(t *testing.T) (*Script, []byte) {
	t.Helper()

	s, err := loadScript(strings.NewReader(sampleScript))
	require.NoError(t, err)

	w := fastbuffer.MustNew(4, fastbuffer.Options{MaxSize: 1 << 10})
	defer w.Dispose()
	require.NoError(t, encodeScript(w, s))
	return s, w.ToArray()
}

func TestEncodeScript(t *testing.T) {
	_, data := encodeSample(t)

	assert.Equal(t, byte(255), data[0])
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, data[1:5])

	want := 1 + 4 + 8 + 1 + (4 + 6) + (4 + 5) + (4 + 10) + 2 + 2 + 1 + 1 + 2
	assert.Len(t, data, want)

	// The three bits of 5 fill one byte ahead of the trailing u16.
	assert.Equal(t, byte(5), data[want-3])
	assert.Equal(t, binary.NativeEndian.AppendUint16(nil, 7), data[want-2:])
}

func TestDecodeScript(t *testing.T) {
	s, data := encodeSample(t)

	var out bytes.Buffer
	require.NoError(t, decodeScript(&out, reader.New(data), s))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(s.Items))

	want := []string{"255", "-1", "2.5", "true", "[1 2 3]", "hello", "héllo", "cafe", "300", "-2", "5", "7"}
	for i, line := range lines {
		fields := strings.Fields(line)
		assert.Equal(t, s.Items[i].Type, fields[0])
		assert.Equal(t, want[i], strings.Join(fields[1:], " "), "item %d", i)
	}
}

func TestDecodeScriptTrailingBytes(t *testing.T) {
	s, data := encodeSample(t)

	var out bytes.Buffer
	err := decodeScript(&out, reader.New(append(data, 0)), s)
	require.ErrorContains(t, err, "1 trailing bytes")
}

func TestDecodeScriptShortInput(t *testing.T) {
	s, data := encodeSample(t)

	var out bytes.Buffer
	err := decodeScript(&out, reader.New(data[:len(data)-1]), s)
	require.ErrorIs(t, err, reader.ErrShortBuffer)
	assert.ErrorContains(t, err, "item 11 (u16)")
}

func TestUnknownType(t *testing.T) {
	s, err := loadScript(strings.NewReader("items: [{type: u128, value: 1}]"))
	require.NoError(t, err)

	w := fastbuffer.MustNew(16, fastbuffer.Options{})
	defer w.Dispose()
	err = encodeScript(w, s)
	require.ErrorIs(t, err, errUnknownType)
	assert.ErrorContains(t, err, `"u128"`)
}

func TestEncodeScriptErrors(t *testing.T) {
	tests := map[string]string{
		"value":    "items: [{type: u8, value: nope}]",
		"hex":      "items: [{type: bytes, value: xyz}]",
		"bits":     "items: [{type: bits, value: 1, bits: 65}]",
		"capacity": "items: [{type: u64, value: 1}]",
	}
	for name, src := range tests {
		s, err := loadScript(strings.NewReader(src))
		require.NoError(t, err, name)

		w := fastbuffer.MustNew(4, fastbuffer.Options{})
		assert.Error(t, encodeScript(w, s), name)
		w.Dispose()
	}

	s, err := loadScript(strings.NewReader("items: [{type: u64, value: 1}]"))
	require.NoError(t, err)
	w := fastbuffer.MustNew(4, fastbuffer.Options{})
	defer w.Dispose()
	require.ErrorIs(t, encodeScript(w, s), fastbuffer.ErrCapacityExceeded)
}

func TestLoadScriptInvalid(t *testing.T) {
	_, err := loadScript(strings.NewReader("items: {"))
	require.Error(t, err)
}

func TestTypeNames(t *testing.T) {
	names := typeNames()
	assert.Len(t, names, len(codecs))
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "bits")
}
