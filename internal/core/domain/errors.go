package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error the core returns unwraps to exactly one of these;
// the HTTP layer maps kinds to status codes.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation_failed")
	ErrInternal        = errors.New("internal")
)

// Error carries a stable public message and the kind it belongs to.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

// Kind returns the kind sentinel this error belongs to.
func (e *Error) Kind() error { return e.kind }

var (
	ErrMissingCredentials = newError(ErrUnauthenticated, "missing or malformed authorization header")
	ErrInvalidToken       = newError(ErrUnauthenticated, "invalid or expired token")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid credentials")

	ErrAccessDenied = newError(ErrForbidden, "forbidden")

	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrCourseNotFound     = newError(ErrNotFound, "course not found")
	ErrEnrollmentNotFound = newError(ErrNotFound, "enrollment not found")

	ErrEmailTaken        = newError(ErrConflict, "email already in use")
	ErrAlreadyEnrolled   = newError(ErrConflict, "already enrolled in this course")
	ErrInvalidTransition = newError(ErrConflict, "invalid status transition")

	ErrInvalidStatus = newError(ErrValidation, "invalid enrollment status")
	ErrInvalidRole   = newError(ErrValidation, "invalid role")

	ErrSigningUnavailable = newError(ErrInternal, "token signing unavailable")
	ErrMalformedDigest    = newError(ErrInternal, "malformed password digest")
)

// ErrDuplicateKey is returned by store adapters when a write violates a
// uniqueness constraint. Services translate it into a Conflict error that
// names the violated business rule.
var ErrDuplicateKey = errors.New("duplicate key")

// ValidationError reports malformed input with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field → message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// KindOf returns the kind sentinel for err, or ErrInternal when err carries no
// known kind.
func KindOf(err error) error {
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrValidation, ErrInternal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// PublicMessage returns the message that may be shown to callers. Errors
// without a public message (driver failures, wrapped internals) yield "".
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var de *Error
	if errors.As(err, &de) {
		return de.msg
	}
	return ""
}
