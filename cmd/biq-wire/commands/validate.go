package commands

import (
	"fmt"
	"io"
	"strings"
)

// RunValidate decodes the document at path as the named envelope and
// reports the result. A malformed document is returned as an error.
func RunValidate(path, envelope, format string, w io.Writer) error {
	codec, err := codecFor(format)
	if err != nil {
		return err
	}
	dst, err := newEnvelope(envelope)
	if err != nil {
		return err
	}
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	report, err := codec.DecodeReport(data, dst)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "OK: %s (%s, %d bytes)\n", envelope, codec.Format(), len(data))
	if len(report.Deprecated) > 0 {
		fmt.Fprintf(w, "Deprecated keys: %s\n", strings.Join(report.Deprecated, ", "))
	}
	return nil
}
