package common

import (
	"errors"
	"net/http"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetails returns a copy of the error carrying the given details.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// NotFound builds a 404 error for the named resource.
func NotFound(resource string) *AppError {
	return NewAppError("NOT_FOUND", resource+" not found", http.StatusNotFound, nil)
}

// Conflict builds a 409 error.
func Conflict(message string, err error) *AppError {
	return NewAppError("CONFLICT", message, http.StatusConflict, err)
}

// BadRequest builds a 400 error.
func BadRequest(message string) *AppError {
	return NewAppError("BAD_REQUEST", message, http.StatusBadRequest, nil)
}

// InvalidField builds a 422 shaped like validator failures, for checks that
// cannot be expressed as struct tags.
func InvalidField(field, message string) *AppError {
	return NewAppError("VALIDATION_ERROR", "request validation failed", http.StatusUnprocessableEntity, nil).
		WithDetails(map[string]string{field: message})
}

// Internal wraps an unexpected failure.
func Internal(err error) *AppError {
	return NewAppError("INTERNAL", "internal error", http.StatusInternalServerError, err)
}

var (
	ErrUnauthorized = NewAppError("UNAUTHORIZED", "missing or invalid session", http.StatusUnauthorized, nil)
	ErrForbidden    = NewAppError("FORBIDDEN", "insufficient permissions", http.StatusForbidden, nil)
)

// WriteError renders err using the canonical error envelope. Errors that are not
// AppErrors are reported as opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		JSONError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "request validation failed", verr.Fields())
		return
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		JSONError(w, status, code, message, appErr.Details)
		return
	}
	JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}
