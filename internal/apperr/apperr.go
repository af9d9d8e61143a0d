// Package apperr defines the error taxonomy shared by every workflow and its
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a fault raised by the domain layer.
type Kind int

const (
	Internal Kind = iota
	NotFound
	BusinessRule
	Validation
	Unauthorized
	AccessDenied
	MethodNotSupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case BusinessRule:
		return "business_rule"
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case AccessDenied:
		return "access_denied"
	case MethodNotSupported:
		return "method_not_supported"
	default:
		return "internal"
	}
}

// Error is a typed domain fault.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels usable with errors.Is.
var (
	ErrNotFound           = &Error{Kind: NotFound}
	ErrBusinessRule       = &Error{Kind: BusinessRule}
	ErrValidation         = &Error{Kind: Validation}
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrAccessDenied       = &Error{Kind: AccessDenied}
	ErrMethodNotSupported = &Error{Kind: MethodNotSupported}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error { return newf(NotFound, format, args...) }

func BusinessRulef(format string, args ...any) *Error { return newf(BusinessRule, format, args...) }

func Validationf(format string, args ...any) *Error { return newf(Validation, format, args...) }

func Unauthorizedf(format string, args ...any) *Error { return newf(Unauthorized, format, args...) }

func AccessDeniedf(format string, args ...any) *Error { return newf(AccessDenied, format, args...) }

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind carried by err, or Internal when err is untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(k Kind) int {
	switch k {
	case NotFound, MethodNotSupported:
		return http.StatusNotFound
	case BusinessRule, Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to expose to a client.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == Internal {
		return "internal error"
	}
	if e.Message != "" {
		return e.Message
	}
	return strings.ReplaceAll(e.Kind.String(), "_", " ")
}
