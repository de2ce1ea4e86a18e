// Package apperr defines the error kinds every service operation fails with.
// Handlers map a kind to an HTTP status with Status; anything that is not one
// of these kinds is an internal failure.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation error")
	ErrInvalidState    = errors.New("invalid state")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// kindError carries a client-facing message and unwraps to its kind sentinel.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKind(kind error, msg string) error {
	return errors.WithStackDepth(&kindError{kind: kind, msg: msg}, 2)
}

// NotFound reports a missing resource, e.g. NotFound("job").
func NotFound(resource string) error {
	return newKind(ErrNotFound, resource+" not found")
}

func Forbidden(msg string) error {
	return newKind(ErrForbidden, msg)
}

func Conflict(msg string) error {
	return newKind(ErrConflict, msg)
}

func Validation(msg string) error {
	return newKind(ErrValidation, msg)
}

func Validationf(format string, args ...interface{}) error {
	return newKind(ErrValidation, fmt.Sprintf(format, args...))
}

func InvalidState(msg string) error {
	return newKind(ErrInvalidState, msg)
}

func Unauthenticated(msg string) error {
	return newKind(ErrUnauthenticated, msg)
}

// Kind describes how an error surfaces at the HTTP boundary.
type Kind struct {
	Status int
	Code   string
}

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrNotFound, Kind{http.StatusNotFound, "NOT_FOUND"}},
	{ErrForbidden, Kind{http.StatusForbidden, "FORBIDDEN"}},
	{ErrConflict, Kind{http.StatusBadRequest, "CONFLICT"}},
	{ErrValidation, Kind{http.StatusBadRequest, "VALIDATION_ERROR"}},
	{ErrInvalidState, Kind{http.StatusBadRequest, "INVALID_STATE"}},
	{ErrUnauthenticated, Kind{http.StatusUnauthorized, "UNAUTHORIZED"}},
}

var internal = Kind{http.StatusInternalServerError, "INTERNAL_ERROR"}

// KindOf returns the boundary kind for err. Unknown errors are internal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return internal
}

// IsInternal reports whether err is not one of the declared kinds.
func IsInternal(err error) bool {
	return KindOf(err) == internal
}

// Message is the client-facing text for err. Internal errors never leak detail.
func Message(err error) string {
	if IsInternal(err) {
		return "internal server error"
	}
	// context added by callers stays in the logs, the client gets the kind's message
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return errors.UnwrapAll(err).Error()
}
