// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcoder

import (
	"errors"
	"fmt"

	"github.com/pdiddy/gs-transcoder/internal/binary"
)

// Kind classifies a transcoder failure.
type Kind int

const (
	// KindExecutionFailure means Ghostscript could not be started or exited
	// non-zero. The error wraps the *binary.ExecutionError.
	KindExecutionFailure Kind = iota + 1

	// KindMissingOutput means Ghostscript reported success but the PDF
	// destination does not exist. There is no wrapped cause.
	KindMissingOutput

	// KindConfiguration means no Ghostscript binary could be resolved.
	KindConfiguration

	// KindInvalidArgument means the request was rejected before any process
	// was started.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindExecutionFailure:
		return "execution failure"
	case KindMissingOutput:
		return "missing output"
	case KindConfiguration:
		return "configuration error"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every Transcoder operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Code returns the exit status of the failed Ghostscript run, or 0 when the
// error does not wrap one.
func (e *Error) Code() int {
	var execErr *binary.ExecutionError
	if errors.As(e.Err, &execErr) {
		return execErr.ExitCode
	}
	return 0
}

// IsKind reports whether err is a transcoder *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}
