package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"import.name/pan"

	"github.com/rawbytedev/fastbuffer"
	"github.com/rawbytedev/fastbuffer/pkg/reader"
)

// Script is the YAML input of the encode and decode commands:
//
//	items:
//	  - {type: u32, value: 42}
//	  - {type: string, value: hello}
//	  - {type: "[]i16", value: [1, 2, 3]}
//	  - {type: bits, value: 5, bits: 3}
type Script struct {
	Items []Item `yaml:"items"`
}

type Item struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
	Bits  uint      `yaml:"bits"`
}

var errUnknownType = errors.New("unknown item type")

func loadScript(r io.Reader) (*Script, error) {
	s := new(Script)
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, errors.Wrap(err, "parsing script")
	}
	return s, nil
}

type codec struct {
	encode func(*fastbuffer.Writer, *Item)
	decode func(*reader.Reader, *Item) any
}

var codecs = map[string]codec{
	"u8":    scalar[uint8](),
	"u16":   scalar[uint16](),
	"u32":   scalar[uint32](),
	"u64":   scalar[uint64](),
	"i8":    scalar[int8](),
	"i16":   scalar[int16](),
	"i32":   scalar[int32](),
	"i64":   scalar[int64](),
	"f32":   scalar[float32](),
	"f64":   scalar[float64](),
	"bool":  scalar[bool](),
	"[]u8":  slice[uint8](),
	"[]u16": slice[uint16](),
	"[]u32": slice[uint32](),
	"[]u64": slice[uint64](),
	"[]i8":  slice[int8](),
	"[]i16": slice[int16](),
	"[]i32": slice[int32](),
	"[]i64": slice[int64](),
	"[]f32": slice[float32](),
	"[]f64": slice[float64](),

	"string": text(false),
	"ascii":  text(true),

	"bytes": {
		encode: func(w *fastbuffer.Writer, it *Item) {
			b := hexValue(it)
			_, err := w.Write(b)
			pan.Check(err)
		},
		decode: func(r *reader.Reader, it *Item) any {
			b, err := r.ReadBytes(len(hexValue(it)))
			pan.Check(err)
			return hex.EncodeToString(b)
		},
	},

	"varuint": {
		encode: func(w *fastbuffer.Writer, it *Item) {
			var v uint64
			pan.Check(it.Value.Decode(&v))
			pan.Check(w.WriteVarUint(v))
		},
		decode: func(r *reader.Reader, it *Item) any {
			v, err := r.ReadVarUint()
			pan.Check(err)
			return v
		},
	},

	"varint": {
		encode: func(w *fastbuffer.Writer, it *Item) {
			var v int64
			pan.Check(it.Value.Decode(&v))
			pan.Check(w.WriteVarInt(v))
		},
		decode: func(r *reader.Reader, it *Item) any {
			v, err := r.ReadVarInt()
			pan.Check(err)
			return v
		},
	},

	"bits": {
		encode: func(w *fastbuffer.Writer, it *Item) {
			var v uint64
			pan.Check(it.Value.Decode(&v))
			bw := w.EnterBitwiseContext()
			defer bw.Close()
			pan.Check(bw.WriteBits(v, it.Bits))
		},
		decode: func(r *reader.Reader, it *Item) any {
			br := r.EnterBitwiseContext()
			defer br.Close()
			v, err := br.ReadBits(it.Bits)
			pan.Check(err)
			return v
		},
	},
}

func scalar[T any]() codec {
	return codec{
		encode: func(w *fastbuffer.Writer, it *Item) {
			var v T
			pan.Check(it.Value.Decode(&v))
			pan.Check(fastbuffer.WriteValue(w, v))
		},
		decode: func(r *reader.Reader, it *Item) any {
			v, err := reader.ReadValue[T](r)
			pan.Check(err)
			return v
		},
	}
}

func slice[T any]() codec {
	return codec{
		encode: func(w *fastbuffer.Writer, it *Item) {
			var v []T
			pan.Check(it.Value.Decode(&v))
			pan.Check(fastbuffer.WriteSlice(w, v))
		},
		decode: func(r *reader.Reader, it *Item) any {
			v, err := reader.ReadSlice[T](r)
			pan.Check(err)
			return v
		},
	}
}

func text(oneByteChars bool) codec {
	return codec{
		encode: func(w *fastbuffer.Writer, it *Item) {
			pan.Check(w.WriteString(it.Value.Value, oneByteChars))
		},
		decode: func(r *reader.Reader, it *Item) any {
			s, err := r.ReadString(oneByteChars)
			pan.Check(err)
			return s
		},
	}
}

func hexValue(it *Item) []byte {
	b, err := hex.DecodeString(it.Value.Value)
	pan.Check(errors.Wrap(err, "bytes value must be hex"))
	return b
}

func lookup(typ string) codec {
	c, ok := codecs[typ]
	if !ok {
		pan.Panic(errors.Wrapf(errUnknownType, "%q", typ))
	}
	return c
}

// encodeScript writes the items into w in order.
func encodeScript(w *fastbuffer.Writer, s *Script) error {
	for i := range s.Items {
		it := &s.Items[i]
		if err := encodeItem(w, it); err != nil {
			return errors.WithMessagef(err, "item %d (%s)", i, it.Type)
		}
	}
	return nil
}

func encodeItem(w *fastbuffer.Writer, it *Item) (err error) {
	defer func() { err = pan.Error(recover()) }()

	lookup(it.Type).encode(w, it)
	return
}

// decodeScript reads values back in the order the script describes and
// prints one line per item.
func decodeScript(out io.Writer, r *reader.Reader, s *Script) error {
	for i := range s.Items {
		it := &s.Items[i]
		v, err := decodeItem(r, it)
		if err != nil {
			return errors.WithMessagef(err, "item %d (%s)", i, it.Type)
		}
		if _, err := fmt.Fprintf(out, "%-8s %v\n", it.Type, v); err != nil {
			return err
		}
	}
	if n := r.Remaining(); n > 0 {
		return errors.Errorf("%d trailing bytes", n)
	}
	return nil
}

func decodeItem(r *reader.Reader, it *Item) (v any, err error) {
	defer func() { err = pan.Error(recover()) }()

	v = lookup(it.Type).decode(r, it)
	return
}

func typeNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
