// Package errors defines the typed failures surfaced by the API. Every error
// that reaches a handler is (or wraps) an *APIError carrying the HTTP status
// code and the outward-facing message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel failures for the token lifecycle. All of them are surfaced to
// clients as 401; the distinction exists for logs and tests.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenReused fires when a presented refresh token no longer matches
	// the stored value: the token was rotated away or cleared by logout.
	ErrTokenReused = errors.New("refresh token superseded")
)

// APIError is a failure with an HTTP status code and a client-safe message.
// The wrapped cause, if any, is for logs only and is never serialized.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"` // always false, mirrors the response envelope
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is match two APIErrors by status and message, so sentinel
// API errors can be compared without identity.
func (e *APIError) Is(target error) bool {
	var apiErr *APIError
	if !errors.As(target, &apiErr) {
		return false
	}
	return e.StatusCode == apiErr.StatusCode && e.Message == apiErr.Message
}

func newAPIError(status int, msg string, cause error) *APIError {
	return &APIError{StatusCode: status, Message: msg, Err: cause}
}

// NewValidation reports malformed or missing input.
func NewValidation(msg string) *APIError {
	return newAPIError(http.StatusBadRequest, msg, nil)
}

// NewNotFound reports a missing resource.
func NewNotFound(msg string) *APIError {
	return newAPIError(http.StatusNotFound, msg, nil)
}

// NewConflict reports a uniqueness violation (duplicate username or email).
func NewConflict(msg string) *APIError {
	return newAPIError(http.StatusConflict, msg, nil)
}

// NewInvalidCredentials reports a failed login. The message is deliberately
// identical whether the account is missing or the password is wrong, so the
// response does not leak account existence.
func NewInvalidCredentials() *APIError {
	return newAPIError(http.StatusUnauthorized, "invalid username/email or password", nil)
}

// NewUnauthorized reports a missing, invalid, expired or reused token. cause
// may carry one of the token sentinels for diagnostics.
func NewUnauthorized(msg string, cause error) *APIError {
	return newAPIError(http.StatusUnauthorized, msg, cause)
}

// NewInternal reports an unexpected store, signing or upload failure.
func NewInternal(msg string, cause error) *APIError {
	return newAPIError(http.StatusInternalServerError, msg, cause)
}

// StatusCode extracts the HTTP status from err, defaulting to 500.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
