package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned errors still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *Error
	if errors.As(target, &other) && other != nil {
		return e.Code == other.Code
	}
	return false
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrInvalidRange         = New("INVALID_RANGE", http.StatusUnprocessableEntity, "range must be one of [7, 30, 90]")
	ErrInvalidSort          = New("INVALID_SORT", http.StatusUnprocessableEntity, "sort must be one of [pageviews, revenue, rpm]")
	ErrPageNotFound         = New("PAGE_NOT_FOUND", http.StatusNotFound, "no page found for the given page_key")
	ErrSiteNotFound         = New("SITE_NOT_FOUND", http.StatusNotFound, "site not found or access denied")
	ErrConnectionNotFound   = New("CONNECTION_NOT_FOUND", http.StatusNotFound, "connection not found")
	ErrAccessDenied         = New("ACCESS_DENIED", http.StatusForbidden, "you don't have access to this resource")
	ErrDomainExists         = New("DOMAIN_EXISTS", http.StatusBadRequest, "a site with this domain already exists")
	ErrEmailExists          = New("EMAIL_ALREADY_EXISTS", http.StatusConflict, "an account with this email already exists")
	ErrSyncInProgress       = New("SYNC_IN_PROGRESS", http.StatusConflict, "a sync is already running for this site")
	ErrSyncFailed           = New("SYNC_FAILED", http.StatusInternalServerError, "dummy data generation failed")
	ErrEndpointNotAvailable = New("ENDPOINT_NOT_AVAILABLE", http.StatusNotFound, "this endpoint is not available in the current environment")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
