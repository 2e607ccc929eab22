package wire

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every decode failure: invalid syntax, wrong
// shape, missing or null required fields and type mismatches.
var ErrMalformed = errors.New("malformed document")

// MalformedError describes why a document was rejected.
type MalformedError struct {
	// Path locates the offending value, e.g. "limits[2].limitType".
	// Empty for document-level failures.
	Path string

	// Reason is a short description of the failure.
	Reason string

	// Err is the underlying parser error, if any.
	Err error
}

func (e *MalformedError) Error() string {
	msg := ErrMalformed.Error()
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformed as a match so errors.Is works without Err set.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(path, reason string) *MalformedError {
	return &MalformedError{Path: path, Reason: reason}
}

func malformedErr(path, reason string, err error) *MalformedError {
	return &MalformedError{Path: path, Reason: reason, Err: err}
}

// pathOf returns the path of err if it is a MalformedError.
func pathOf(err error) string {
	var me *MalformedError
	if errors.As(err, &me) {
		return me.Path
	}
	return ""
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
