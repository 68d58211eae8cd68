package fastbuffer

import (
	"testing"
)

const benchValues = 256

func BenchmarkPutValue(b *testing.B) {
	w := MustNew(benchValues*8, Options{})
	defer w.Dispose()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Reset()
		if !w.TryBeginWrite(benchValues * 8) {
			b.Fatal("reservation failed")
		}
		for j := 0; j < benchValues; j++ {
			PutValue(w, uint64(j))
		}
	}
}

func BenchmarkWriteValue(b *testing.B) {
	w := MustNew(benchValues*8, Options{})
	defer w.Dispose()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Reset()
		for j := 0; j < benchValues; j++ {
			_ = WriteValue(w, uint64(j))
		}
	}
}

func BenchmarkWriteSlice(b *testing.B) {
	s := make([]float32, benchValues)
	w := MustNew(SliceWriteSize(s), Options{})
	defer w.Dispose()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Reset()
		_ = WriteSlice(w, s)
	}
}

func BenchmarkWriteString(b *testing.B) {
	for _, oneByte := range []bool{true, false} {
		name := "wide"
		if oneByte {
			name = "onebyte"
		}
		b.Run(name, func(b *testing.B) {
			w := MustNew(256, Options{})
			defer w.Dispose()

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				w.Reset()
				_ = w.WriteString("the quick brown fox jumps over the lazy dog", oneByte)
			}
		})
	}
}

func BenchmarkGrow(b *testing.B) {
	for _, alloc := range []Allocator{Heap, Pooled, Mmap} {
		b.Run(alloc.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				w := MustNew(64, Options{MaxSize: 1 << 16, Allocator: alloc})
				w.TryBeginWrite(1 << 16)
				w.Dispose()
			}
		})
	}
}

func BenchmarkBitWriter(b *testing.B) {
	w := MustNew(benchValues, Options{})
	defer w.Dispose()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w.Reset()
		bw := w.EnterBitwiseContext()
		bw.TryBeginWriteBits(benchValues * 5)
		for j := 0; j < benchValues; j++ {
			bw.PutBits(uint64(j), 5)
		}
		bw.Close()
	}
}

func BenchmarkTempBytes(b *testing.B) {
	w := MustNew(1024, Options{})
	defer w.Dispose()
	w.TryBeginWrite(1024)
	w.Advance(1024)

	s := NewScratch(DefaultScratchSize)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = w.TempBytes(s)
	}
}
