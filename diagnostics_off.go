//go:build !fastbufferdebug

package fastbuffer

const diagnostics = false
