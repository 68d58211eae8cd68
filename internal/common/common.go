package common

import (
	"reflect"
	"sync"
)

// IsFixedKind reports whether k is a fixed-size scalar kind.
func IsFixedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// IsPlain reports whether values of t are plain data: fixed-size scalars and
// arrays or structs made only of them.  Such values can be copied byte for byte.
func IsPlain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Array:
		return IsPlain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !IsPlain(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return IsFixedKind(t.Kind())
	}
}

var plainTypes sync.Map // reflect.Type -> bool

// Plain is IsPlain for T with the result cached per type.
func Plain[T any]() (reflect.Type, bool) {
	t := reflect.TypeFor[T]()
	if v, ok := plainTypes.Load(t); ok {
		return t, v.(bool)
	}
	plain := IsPlain(t)
	plainTypes.Store(t, plain)
	return t, plain
}

// VarUintSize returns the number of bytes PutVarUint uses for x.
func VarUintSize(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}
	return n
}

// PutVarUint writes x into b as unsigned LEB128 and returns the number of
// bytes written.  b must have room for VarUintSize(x) bytes.
func PutVarUint(b []byte, x uint64) int {
	i := 0
	for x >= 0x80 {
		b[i] = byte(x) | 0x80
		x >>= 7
		i++
	}
	b[i] = byte(x)
	return i + 1
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
// Zero bytes consumed means b ended before the varint did, or it was longer
// than 10 bytes.
func ReadVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		if i == 10 {
			return 0, 0
		}
		x |= uint64(c&0x7F) << s
		if c&0x80 == 0 {
			return x, i + 1
		}
		s += 7
	}
	return 0, 0
}

func ZigZag(x int64) uint64   { return uint64(x<<1) ^ uint64(x>>63) }
func UnZigZag(x uint64) int64 { return int64(x>>1) ^ -int64(x&1) }

// UTF16Len returns the number of UTF-16 code units needed for s.  Invalid
// UTF-8 bytes count as one unit each (U+FFFD).
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
