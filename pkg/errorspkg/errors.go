// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// Kind classifies an error so callers can tell terminal failures from retryable ones.
type Kind uint8

// Error kinds.
const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindInsufficientFunds
	KindDuplicate
	KindUpstreamUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindDuplicate:
		return "duplicate_resource"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// Error is an application error carrying its Kind.
type Error struct {
	kind Kind
	msg  string
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

var (
	// ErrInternal indicates internal server error.
	ErrInternal = New(KindInternal, "internal")
	// ErrUpstreamUnavailable indicates that the store or a downstream service did not answer in time.
	ErrUpstreamUnavailable = New(KindUpstreamUnavailable, "upstream unavailable")
	// ErrInvalidInput indicates a malformed request.
	ErrInvalidInput = New(KindInvalidInput, "invalid input")
)

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return KindInternal
}

// IsRetryable reports whether the operation that returned err may be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch KindOf(err) {
	case KindUpstreamUnavailable, KindInternal:
		return true
	}

	return false
}
