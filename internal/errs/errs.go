package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers can branch on it
// without inspecting error strings.
type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidInput
	KindNotFound
	KindStorageFailure
	KindUpstreamFailure
	KindServiceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindStorageFailure:
		return "storage_failure"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindServiceUnavailable:
		return "service_unavailable"
	default:
		return "unexpected"
	}
}

// Error carries a failure kind, a caller-facing message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. The cause may be nil.
func E(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Ef builds an *Error without a cause, formatting the message.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err. Unclassified errors
// report KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Message returns the caller-facing message of a classified error,
// or err.Error() for unclassified ones.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}
