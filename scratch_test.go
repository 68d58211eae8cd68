package fastbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotThenSnapshot(t *testing.T) {
	s := NewScratch(64)
	a := newWriter(t, 8, 8)
	b := newWriter(t, 8, 8)

	_, err := a.Write([]byte("AAAA"))
	require.NoError(t, err)
	_, err = b.Write([]byte("BB"))
	require.NoError(t, err)

	va := a.TempBytes(s)
	assert.Equal(t, "AAAA", string(va))

	vb := b.TempBytes(s)
	assert.Equal(t, "BB", string(vb))

	// The first view now shows the second snapshot.
	assert.Equal(t, "BBAA", string(va))
}

func TestSnapshotFallsBackToCopy(t *testing.T) {
	small := NewScratch(2)
	w := newWriter(t, 8, 8)

	_, err := w.Write([]byte("data"))
	require.NoError(t, err)

	for _, s := range []*Scratch{small, nil} {
		v := w.TempBytes(s)
		assert.Equal(t, "data", string(v))
		v[0] = 'x'
		assert.Equal(t, "data", string(w.ToArray()))
	}
	assert.Equal(t, 2, small.Cap())
}

func TestSharedScratch(t *testing.T) {
	w := newWriter(t, 8, 8)

	_, err := w.Write([]byte("shared"))
	require.NoError(t, err)

	v := w.TempBytes(SharedScratch)
	assert.Equal(t, "shared", string(v))
	assert.Equal(t, DefaultScratchSize, SharedScratch.Cap())
	assert.Equal(t, 6, cap(v))
}
