package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
)

// opError tags an error with the handler operation that produced it.
// The message stays the wrapped error's own, so clients see it verbatim.
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

// NewKind returns err tagged with op.
func NewKind(op string, err error) error {
	return &opError{op: op, err: err}
}

// Wrap tags err with op, adding detail to the message when given.
func Wrap(op string, err error, detail ...string) error {
	if err == nil {
		return nil
	}
	if len(detail) > 0 {
		err = fmt.Errorf("%s: %w", detail[0], err)
	}
	return &opError{op: op, err: err}
}

// Op returns the operation an error was tagged with, or "".
func Op(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		return oe.op
	}
	return ""
}
