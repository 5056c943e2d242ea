// internal/app/system/apperr/apperr.go
// Package apperr defines the error kinds surfaced by the exchange core.
//
// Every failure a store or handler can produce maps onto one of five
// kinds. Handlers translate kinds into HTTP status codes; callers decide
// retry policy (only Unavailable is reasonably retryable).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// InvalidArgument means malformed or missing input (empty message
	// text, unknown skill, self-directed request).
	InvalidArgument Kind = iota + 1
	// NotFound means the referenced record does not exist.
	NotFound
	// Unauthorized means the actor is not a legitimate party to the record.
	Unauthorized
	// InvalidState means the operation is not permitted in the record's
	// current lifecycle state (e.g. accepting an already-rejected request).
	InvalidState
	// Unavailable means an underlying storage or transport failure.
	Unavailable
)

// String returns the canonical wire name of the kind.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case InvalidState:
		return "invalid_state"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the kind to an HTTP response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusForbidden
	case InvalidState:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed application error carrying a kind and a message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality, so errors.Is(err, apperr.New(apperr.NotFound, ...))
// style comparisons work against the kind sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// New builds an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from err, or 0 when err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Storage wraps a raw storage error as Unavailable, passing typed errors
// through untouched so kinds assigned deeper in the call chain survive.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Wrap(Unavailable, err, "storage failure")
}
