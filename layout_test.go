package fastbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	assert.Equal(t, 1, SizeOf[bool]())
	assert.Equal(t, 2, SizeOf[int16]())
	assert.Equal(t, 8, SizeOf[float64]())
	assert.Equal(t, 12, SizeOf[[3]uint32]())

	assert.Equal(t, 4, SliceWriteSize[uint64](nil))
	assert.Equal(t, 4+3*8, SliceWriteSize([]uint64{1, 2, 3}))

	assert.Equal(t, 4+5, StringWriteSize("héllo", true))
	assert.Equal(t, 4+2*5, StringWriteSize("héllo", false))
	assert.Equal(t, 4+2*2, StringWriteSize("\U0001F600", false))

	assert.Equal(t, 1, VarUintSize(0))
	assert.Equal(t, 10, VarUintSize(1<<64-1))
	assert.Equal(t, 1, VarIntSize(-64))
	assert.Equal(t, 2, VarIntSize(64))
}

func TestParseAllocator(t *testing.T) {
	for _, a := range []Allocator{Heap, Pooled, Mmap} {
		got, err := ParseAllocator(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAllocator("")
	require.NoError(t, err)
	assert.Equal(t, Heap, got)

	got, err = ParseAllocator("POOL")
	require.NoError(t, err)
	assert.Equal(t, Pooled, got)

	_, err = ParseAllocator("arena")
	require.ErrorIs(t, err, ErrUnknownAllocator)
	assert.Equal(t, "unknown", Allocator(9).String())
}

func TestPoolClasses(t *testing.T) {
	for n, c := range map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 1024: 10, 1025: 11} {
		assert.Equal(t, c, poolClass(n), "%d", n)
	}

	b := poolAlloc(100)
	assert.Len(t, b, 100)
	assert.Equal(t, 128, cap(b))
	poolFree(b)

	assert.Nil(t, poolAlloc(0))
	assert.NotPanics(t, func() { poolFree(make([]byte, 3)) })
}

func TestPooledRegionsAreCleared(t *testing.T) {
	w := MustNew(8, Options{Allocator: Pooled})
	_, err := w.Write([]byte("secret!!"))
	require.NoError(t, err)
	w.Dispose()

	for i := 0; i < 4; i++ {
		w := MustNew(8, Options{Allocator: Pooled})
		w.Seek(8)
		assert.Equal(t, make([]byte, 8), w.ToArray())
		w.Dispose()
	}
}
