package errors

import "errors"

// Kind classifies an AppError for transport-layer mapping.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindInternal        Kind = "internal"
	KindExternalService Kind = "external_service"
	KindTimeout         Kind = "timeout"
)

// AppError encodes domain specific error details.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(kind Kind, message string, err error) error {
	if err == nil {
		return &AppError{Kind: kind, Message: message}
	}
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Is helps callers differentiate failures by kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf extracts the Kind carried by err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
