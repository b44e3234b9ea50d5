// Package dberrors defines the typed error kinds shared across heapdb's
// storage, locking, buffer, and query layers.
package dberrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a storage or query-layer failure.
type Kind int

const (
	// InvalidPage is raised when reading past the end of a file, or a short read.
	InvalidPage Kind = iota
	// CorruptPage is raised when page bytes are ill-formed.
	CorruptPage
	// PageFull is raised when a page has no empty slot for an insertion.
	PageFull
	// TupleNotOnPage is raised when a delete target is absent.
	TupleNotOnPage
	// SchemaMismatch is raised when an Insert's child descriptor differs from the table's.
	SchemaMismatch
	// TypeMismatch is raised when an aggregator sees a tuple field of the wrong type.
	TypeMismatch
	// UnsupportedOp is raised for e.g. AVG/SUM over a string field.
	UnsupportedOp
	// TransactionAborted is raised when a lock acquisition times out.
	TransactionAborted
)

func (k Kind) String() string {
	switch k {
	case InvalidPage:
		return "InvalidPage"
	case CorruptPage:
		return "CorruptPage"
	case PageFull:
		return "PageFull"
	case TupleNotOnPage:
		return "TupleNotOnPage"
	case SchemaMismatch:
		return "SchemaMismatch"
	case TypeMismatch:
		return "TypeMismatch"
	case UnsupportedOp:
		return "UnsupportedOp"
	case TransactionAborted:
		return "TransactionAborted"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type raised by heapdb's internal packages. It
// carries a Kind so callers can switch on failure category, and wraps an
// optional underlying cause with a stack trace via github.com/pkg/errors.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.err }

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), err: errors.New(fmt.Sprintf(format, args...))}
}

// Wrap attaches a Kind and message to an existing error, preserving it as the cause.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), err: errors.Wrap(cause, fmt.Sprintf(format, args...))}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
