// Package evioerr defines the error kinds shared across the evio packages.
//
// Every fallible operation in evio returns one of the sentinel errors below,
// usually wrapped in an *Error that carries the byte offset where the
// problem was detected. Callers should use errors.Is against the sentinels
// and errors.As against *Error to recover the offset.
package evioerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindIoError
	KindBadFormat
	KindBadMagic
	KindUnsupportedVersion
	KindTruncated
	KindCompressionError
	KindOutOfBounds
	KindIndexOutOfRange
	KindBadTemplate
	KindCancelled
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindIoError:
		return "IoError"
	case KindBadFormat:
		return "BadFormat"
	case KindBadMagic:
		return "BadMagic"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindTruncated:
		return "Truncated"
	case KindCompressionError:
		return "CompressionError"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	case KindBadTemplate:
		return "BadTemplate"
	case KindCancelled:
		return "Cancelled"
	case KindInvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

// Sentinel errors for errors.Is comparisons. Every *Error produced by this
// module wraps exactly one of these.
var (
	ErrIoError             = errors.New("evio: io error")
	ErrBadFormat           = errors.New("evio: bad format")
	ErrBadMagic            = errors.New("evio: bad magic number")
	ErrUnsupportedVersion  = errors.New("evio: unsupported version")
	ErrTruncated           = errors.New("evio: truncated data")
	ErrCompressionError    = errors.New("evio: compression error")
	ErrOutOfBounds         = errors.New("evio: out of bounds")
	ErrIndexOutOfRange     = errors.New("evio: index out of range")
	ErrBadTemplate         = errors.New("evio: bad file name template")
	ErrCancelled           = errors.New("evio: operation cancelled")
	ErrInvalidState        = errors.New("evio: invalid state")
)

var sentinels = map[Kind]error{
	KindIoError:            ErrIoError,
	KindBadFormat:          ErrBadFormat,
	KindBadMagic:           ErrBadMagic,
	KindUnsupportedVersion: ErrUnsupportedVersion,
	KindTruncated:          ErrTruncated,
	KindCompressionError:   ErrCompressionError,
	KindOutOfBounds:        ErrOutOfBounds,
	KindIndexOutOfRange:    ErrIndexOutOfRange,
	KindBadTemplate:        ErrBadTemplate,
	KindCancelled:          ErrCancelled,
	KindInvalidState:       ErrInvalidState,
}

// Error is the concrete error type returned by evio operations. Offset is
// the byte offset (file or buffer, depending on the caller) at which the
// problem was detected; it is -1 when an offset is not meaningful.
type Error struct {
	Kind   Kind
	Offset int64
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("evio: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}

	return fmt.Sprintf("evio: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := sentinels[e.Kind]; s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// New creates an *Error with no offset information.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Offset: -1, Msg: msg}
}

// At creates an *Error anchored to a byte offset.
func At(kind Kind, offset int64, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: msg}
}

// Wrap creates an *Error anchored to a byte offset that wraps a lower-level
// cause (e.g. an os.PathError from disk I/O).
func Wrap(kind Kind, offset int64, msg string, cause error) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: msg, Err: cause}
}
