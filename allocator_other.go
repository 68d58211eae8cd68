//go:build !unix

package fastbuffer

func mmapAlloc(n int) ([]byte, error) { return make([]byte, n), nil }
func mmapFree(b []byte) error         { return nil }
