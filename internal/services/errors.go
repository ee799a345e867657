package services

import (
	"errors"
	"fmt"

	"github.com/sendico/apiserver/internal/store"
)

type errorKind int

const (
	kindValidation errorKind = iota + 1
	kindUnauthenticated
	kindForbidden
	kindNotFound
	kindConflict
	kindUpload
)

// Error is a classified service failure. Handlers match it against the
// sentinels below with errors.Is to pick a status code.
type Error struct {
	kind    errorKind
	Message string
	Fields  map[string][]string
	cause   error
}

var (
	ErrValidation      = &Error{kind: kindValidation, Message: "validation failed"}
	ErrUnauthenticated = &Error{kind: kindUnauthenticated, Message: "unauthorized"}
	ErrForbidden       = &Error{kind: kindForbidden, Message: "forbidden"}
	ErrNotFound        = &Error{kind: kindNotFound, Message: "not found"}
	ErrConflict        = &Error{kind: kindConflict, Message: "conflict"}
	ErrUpload          = &Error{kind: kindUpload, Message: "upload failed"}
)

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

func newError(sentinel *Error, message string) *Error {
	return &Error{kind: sentinel.kind, Message: message}
}

func validationError(fields map[string][]string) *Error {
	return &Error{kind: kindValidation, Message: "validation failed", Fields: fields}
}

func fieldError(field, message string) *Error {
	return validationError(map[string][]string{field: {message}})
}

func uploadError(cause error) *Error {
	return &Error{kind: kindUpload, Message: "upload failed", cause: cause}
}

// fromStore translates repository sentinels into service errors.
func fromStore(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, resource+" not found")
	case errors.Is(err, store.ErrConflict):
		return newError(ErrConflict, resource+" already exists")
	default:
		return fmt.Errorf("%s store: %w", resource, err)
	}
}
