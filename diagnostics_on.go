//go:build fastbufferdebug

package fastbuffer

// diagnostics enables reservation and bitwise-context checks on the unchecked
// write path.
const diagnostics = true
