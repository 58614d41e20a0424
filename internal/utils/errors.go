package utils

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindConflict               ErrorKind = "CONFLICT"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindGeocoding              ErrorKind = "GEOCODING_ERROR"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInternal               ErrorKind = "INTERNAL_ERROR"
)

// AppError is a failure with a kind the HTTP layer knows how to report.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind, so callers can compare against
// the sentinels below with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrValidation             = &AppError{Kind: KindValidation}
	ErrNotFound               = &AppError{Kind: KindNotFound}
	ErrConflict               = &AppError{Kind: KindConflict}
	ErrInvalidStateTransition = &AppError{Kind: KindInvalidStateTransition}
	ErrGeocoding              = &AppError{Kind: KindGeocoding}
	ErrForbidden              = &AppError{Kind: KindForbidden}
	ErrUnauthorizedAccess     = &AppError{Kind: KindUnauthorized}
	ErrInternal               = &AppError{Kind: KindInternal}
)

func NewValidationError(format string, args ...interface{}) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(resource string) error {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewConflictError(format string, args ...interface{}) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateTransitionError(resource string, from, to interface{}) error {
	return &AppError{
		Kind:    KindInvalidStateTransition,
		Message: fmt.Sprintf("cannot move %s from %v to %v", resource, from, to),
	}
}

func NewGeocodingError(message string, err error) error {
	return &AppError{Kind: KindGeocoding, Message: message, Err: err}
}

func NewForbiddenError(message string) error {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewInternalError(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
