package fastbuffer

import (
	"math/bits"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Allocator selects where a writer's memory comes from.  Every region owned
// by a writer is released through the allocator that produced it.
type Allocator uint8

const (
	// Heap allocates ordinary Go slices.  Releasing drops the reference.
	Heap Allocator = iota

	// Pooled recycles power-of-two sized slices through sync.Pool.  Recycled
	// regions are zeroed before reuse.
	Pooled

	// Mmap maps anonymous private memory outside of the Go heap and unmaps it
	// on release.  Falls back to Heap where mmap is unavailable.
	Mmap
)

func (a Allocator) String() string {
	switch a {
	case Heap:
		return "heap"
	case Pooled:
		return "pooled"
	case Mmap:
		return "mmap"
	default:
		return "unknown"
	}
}

// ParseAllocator maps a name produced by Allocator.String back to its value.
func ParseAllocator(name string) (Allocator, error) {
	switch strings.ToLower(name) {
	case "", "heap":
		return Heap, nil
	case "pooled", "pool":
		return Pooled, nil
	case "mmap":
		return Mmap, nil
	default:
		return 0, errors.Wrapf(ErrUnknownAllocator, "%q", name)
	}
}

func (a Allocator) alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "allocation of %d bytes", n)
	}
	switch a {
	case Heap:
		return make([]byte, n), nil
	case Pooled:
		return poolAlloc(n), nil
	case Mmap:
		return mmapAlloc(n)
	default:
		return nil, errors.Wrapf(ErrUnknownAllocator, "allocator %d", uint8(a))
	}
}

func (a Allocator) free(b []byte) error {
	switch a {
	case Pooled:
		poolFree(b)
	case Mmap:
		return mmapFree(b)
	}
	return nil
}

// Size class c holds slices with capacity 1<<c.
var pools [bits.UintSize]sync.Pool

func poolClass(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func poolAlloc(n int) []byte {
	if n == 0 {
		return nil
	}
	c := poolClass(n)
	if p, ok := pools[c].Get().(*[]byte); ok {
		b := (*p)[:n]
		clear(b)
		return b
	}
	return make([]byte, n, 1<<c)
}

func poolFree(b []byte) {
	c := cap(b)
	if c == 0 || c&(c-1) != 0 {
		return // not from the pool
	}
	b = b[:0]
	pools[poolClass(c)].Put(&b)
}
