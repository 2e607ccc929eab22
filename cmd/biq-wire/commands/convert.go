package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/qbiq/biq-go/pkg/wire"
)

// ConvertOptions specifies the convert command.
type ConvertOptions struct {
	Envelope string
	From     string
	To       string
	Output   string

	// Sequence treats the input as a stream of documents: a CBOR sequence
	// or newline-separated JSON values.
	Sequence bool
}

// RunConvert re-encodes the document at path from one format to another.
// The document is decoded as the named envelope first, so the output is
// always a valid document.
func RunConvert(path string, opts ConvertOptions) error {
	from, err := codecFor(opts.From)
	if err != nil {
		return err
	}
	to, err := codecFor(opts.To)
	if err != nil {
		return err
	}
	if _, err := newEnvelope(opts.Envelope); err != nil {
		return err
	}

	if opts.Sequence {
		return convertSequence(path, opts, from, to)
	}

	dst, _ := newEnvelope(opts.Envelope)
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if err := from.DecodeInto(data, dst); err != nil {
		return err
	}
	out, err := to.Encode(reflect.ValueOf(dst).Elem().Interface())
	if err != nil {
		return err
	}

	if opts.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func convertSequence(path string, opts ConvertOptions, from, to *wire.Codec) (err error) {
	in := io.Reader(os.Stdin)
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to write output: %w", cerr)
			}
		}()
		out = f
	}

	r := from.NewSequenceReader(in)
	w := to.NewSequenceWriter(out)
	for {
		dst, _ := newEnvelope(opts.Envelope)
		err := r.Next(dst)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(reflect.ValueOf(dst).Elem().Interface()); err != nil {
			return fmt.Errorf("document %d: %w", r.Count()-1, err)
		}
	}
}
