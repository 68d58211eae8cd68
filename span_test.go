package fastbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanStaleAfterGrowth(t *testing.T) {
	w := newWriter(t, 2, 64)

	s := w.CurrentSpan()
	require.True(t, s.Valid())
	assert.Len(t, s.Bytes(), 2)

	require.True(t, w.TryBeginWrite(10))
	assert.False(t, s.Valid())
	requirePanicIs(t, ErrStaleSpan, func() { _ = s.Bytes() })

	s = w.CurrentSpan()
	assert.Len(t, s.Bytes(), 16)
}

func TestSpanSurvivesWritesWithoutGrowth(t *testing.T) {
	w := newWriter(t, 8, 8)

	s := w.CurrentSpan()
	require.NoError(t, w.WriteByte(1))
	assert.True(t, s.Valid())
}

func TestSpanStaleAfterDispose(t *testing.T) {
	w := MustNew(8, Options{})

	s := w.CurrentSpan()
	w.Dispose()
	requirePanicIs(t, ErrStaleSpan, func() { _ = s.Bytes() })
}

func TestZeroSpan(t *testing.T) {
	var s Span
	assert.False(t, s.Valid())
	requirePanicIs(t, ErrStaleSpan, func() { _ = s.Bytes() })
}
