// Command fastbuffer encodes YAML scripts of typed values with a fastbuffer
// writer, optionally wrapping the result in a (compressed) frame, and decodes
// such output back.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rawbytedev/fastbuffer"
	"github.com/rawbytedev/fastbuffer/pkg/frame"
	"github.com/rawbytedev/fastbuffer/pkg/reader"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("fastbuffer failed")
		os.Exit(1)
	}
}

type encodeFlags struct {
	script     string
	output     string
	hex        bool
	frame      bool
	zstd       bool
	memprofile string
}

type decodeFlags struct {
	script string
	input  string
	frame  bool
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		cfg        *Config
	)

	root := &cobra.Command{
		Use:           "fastbuffer",
		Short:         "Encode and decode typed values with a fastbuffer writer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = loadConfig(viper.New(), configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return cfg.configureLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./fastbuffer.yaml)")
	pf.Int("initial-size", 0, "initial writer capacity in bytes")
	pf.Int("max-size", 0, "maximum writer capacity in bytes")
	pf.String("allocator", "", "writer allocator: heap, pooled or mmap")
	pf.String("log-level", "", "log level")

	var ef encodeFlags
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Encode a script of values",
		Long:  "Encode a script of values.  Item types: " + strings.Join(typeNames(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cfg, &ef, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	encode.Flags().StringVarP(&ef.script, "file", "f", "-", "script file, - for stdin")
	encode.Flags().StringVarP(&ef.output, "output", "o", "", "output file (default stdout)")
	encode.Flags().BoolVar(&ef.hex, "hex", false, "write hex instead of raw bytes")
	encode.Flags().BoolVar(&ef.frame, "frame", false, "wrap the output in a frame")
	encode.Flags().BoolVar(&ef.zstd, "zstd", false, "wrap the output in a zstd-compressed frame")
	encode.Flags().StringVar(&ef.memprofile, "memprofile", "", "write a heap profile to this file")

	var df decodeFlags
	decode := &cobra.Command{
		Use:   "decode",
		Short: "Decode encoder output following a script's item types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cfg, &df, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	decode.Flags().StringVarP(&df.script, "file", "f", "", "script file")
	decode.Flags().StringVarP(&df.input, "input", "i", "-", "encoded input, - for stdin")
	decode.Flags().BoolVar(&df.frame, "frame", false, "input is a frame")
	_ = decode.MarkFlagRequired("file")

	inspect := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print a frame's header and hex dump of its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cfg, args[0], cmd.OutOrStdout())
		},
	}

	root.AddCommand(encode, decode, inspect)
	return root
}

func runEncode(cfg *Config, f *encodeFlags, stdin io.Reader, stdout io.Writer) error {
	in, closeIn, err := openInput(f.script, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	script, err := loadScript(in)
	if err != nil {
		return err
	}

	opts, err := cfg.writerOptions()
	if err != nil {
		return err
	}

	w, err := fastbuffer.New(cfg.InitialSize, opts)
	if err != nil {
		return err
	}
	defer w.Dispose()

	if err := encodeScript(w, script); err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"items":    len(script.Items),
		"length":   w.Length(),
		"capacity": w.Capacity(),
	})

	out := w.Bytes()
	if f.frame || f.zstd {
		fw, err := fastbuffer.New(frame.Size(len(out)), fastbuffer.Options{
			MaxSize:   math.MaxInt32,
			Allocator: opts.Allocator,
			Logger:    opts.Logger,
		})
		if err != nil {
			return err
		}
		defer fw.Dispose()

		enc, err := frame.NewEncoder(frame.Options{Compress: f.zstd})
		if err != nil {
			return err
		}
		defer enc.Close()

		if err := enc.Encode(fw, out); err != nil {
			return err
		}
		out = fw.Bytes()
		log = log.WithField("frame", len(out))
	}
	log.Info("encoded")

	dst := stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer file.Close()
		dst = file
	}

	if f.hex {
		_, err = fmt.Fprintln(dst, hex.EncodeToString(out))
	} else {
		_, err = dst.Write(out)
	}
	if err != nil {
		return errors.Wrap(err, "writing output")
	}

	if f.memprofile != "" {
		return writeHeapProfile(f.memprofile)
	}
	return nil
}

func runDecode(cfg *Config, f *decodeFlags, stdin io.Reader, stdout io.Writer) error {
	sf, err := os.Open(f.script)
	if err != nil {
		return errors.Wrap(err, "opening script")
	}
	defer sf.Close()

	script, err := loadScript(sf)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(f.input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "reading input")
	}

	if f.frame {
		dec := newFrameDecoder(cfg)
		defer dec.Close()

		data, _, err = dec.Decode(data)
		if err != nil {
			return err
		}
	}

	return decodeScript(stdout, reader.New(data), script)
}

func runInspect(cfg *Config, path string, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading frame")
	}

	dec := newFrameDecoder(cfg)
	defer dec.Close()

	payload, h, err := dec.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "version:  %d\n", h.Version)
	fmt.Fprintf(stdout, "flags:    %#02x\n", h.Flags)
	fmt.Fprintf(stdout, "raw:      %d bytes\n", h.RawLength)
	fmt.Fprintf(stdout, "payload:  %d bytes\n", h.PayloadLength)
	_, err = fmt.Fprint(stdout, hex.Dump(payload))
	return err
}

// newFrameDecoder limits decompressed frames to the configured maximum writer
// size.
func newFrameDecoder(cfg *Config) *frame.Decoder {
	dec := frame.NewDecoder()
	if cfg.MaxSize > 0 && uint64(cfg.MaxSize) < math.MaxUint32 {
		dec.MaxRawLength = uint32(cfg.MaxSize)
	}
	return dec
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening input")
	}
	return f, func() { f.Close() }, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating memory profile")
	}
	defer f.Close()
	return errors.Wrap(pprof.WriteHeapProfile(f), "writing memory profile")
}
