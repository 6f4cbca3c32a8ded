package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeMissingField       ErrorCode = "MISSING_FIELD"
	ErrCodeWeakPassword       ErrorCode = "WEAK_PASSWORD"
	ErrCodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodePlayerNotFound     ErrorCode = "PLAYER_NOT_FOUND"
	ErrCodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	ErrCodeServerError        ErrorCode = "SERVER_ERROR"

	// Codes below never surface from the session store's taxonomy; the directory
	// service and the stale-result path use them.
	ErrCodeInvalid    ErrorCode = "INVALID"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeInternal   ErrorCode = "INTERNAL"
	ErrCodeSuperseded ErrorCode = "SUPERSEDED"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches domain errors by code so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid email or password")
	ErrMissingField       = NewError(ErrCodeMissingField, "email and password are required")
	ErrWeakPassword       = NewError(ErrCodeWeakPassword, "password must be at least 6 characters")
	ErrDuplicateEmail     = NewError(ErrCodeDuplicateEmail, "an account with this email already exists")
	ErrNotAuthenticated   = NewError(ErrCodeNotAuthenticated, "not authenticated")
	ErrPlayerNotFound     = NewError(ErrCodePlayerNotFound, "player not found")
	ErrNetworkUnavailable = NewError(ErrCodeNetworkUnavailable, "network unavailable")
	ErrServerError        = NewError(ErrCodeServerError, "server error")
	ErrSuperseded         = NewError(ErrCodeSuperseded, "superseded by a newer session operation")

	ErrAccountNotFound = NewError(ErrCodeNotFound, "account not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidRole     = NewError(ErrCodeInvalid, "unknown role")
	ErrInvalidTier     = NewError(ErrCodeInvalid, "unknown subscription tier")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf extracts the code of a domain error, or INTERNAL for anything else.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
