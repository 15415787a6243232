// =============================================================================
// FILE: internal/apperr/apperr.go
// =============================================================================
// Typed failures shared by the domain services and the HTTP layer.
//
// Services never pick HTTP status codes. They return an *Error with a Kind,
// and web.Response.Fail maps the Kind to a status at the router boundary.
//
// Usage:
//   var ErrEmailTaken = apperr.New(apperr.KindDuplicate, "EMAIL_TAKEN", "Email already registered")
//   return nil, ErrEmailTaken
//   return nil, apperr.Wrap(apperr.KindUpstream, "CARD_SOURCE", "Card source unavailable", err)
// =============================================================================

package apperr

import "errors"

// Kind classifies a failure for status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindDuplicate
	KindInsufficientFunds
	KindNotFound
	KindConflict
	KindRateLimited
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindDuplicate:
		return "duplicate"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// New creates an Error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error around an underlying cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by code, so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a different message and the same code.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// KindOf reports the Kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Validation is shorthand for a KindValidation error.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}
