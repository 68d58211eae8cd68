//go:build unix

package fastbuffer

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func mmapAlloc(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", n)
	}
	return b, nil
}

// mmapFree must be given the exact slice returned by mmapAlloc.
func mmapFree(b []byte) error {
	if cap(b) == 0 {
		return nil
	}
	return errors.Wrap(unix.Munmap(b), "munmap")
}
