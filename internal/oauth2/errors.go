// Package oauth2 implements the token endpoint core: client
// authentication, grant handling and the RFC 6749 error taxonomy.
package oauth2

import (
	"errors"
	"net/http"
)

// RFC 6749 §5.2 error codes.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeInvalidClient        = "invalid_client"
	CodeInvalidGrant         = "invalid_grant"
	CodeUnauthorizedClient   = "unauthorized_client"
	CodeUnsupportedGrantType = "unsupported_grant_type"
	CodeInvalidScope         = "invalid_scope"
	CodeAccessDenied         = "access_denied"
	CodeServerError          = "server_error"
)

// Error is the single protocol error type. It carries the RFC code, the
// HTTP status to serialize with, and a client-facing description.
// Internal detail never travels in Description; it gets logged instead.
type Error struct {
	Code        string `json:"error"`
	Status      int    `json:"-"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// ErrInvalidRequest builds an invalid_request error (400).
func ErrInvalidRequest(desc string) *Error {
	return &Error{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Description: desc}
}

// ErrInvalidClient builds an invalid_client error (401).
func ErrInvalidClient(desc string) *Error {
	return &Error{Code: CodeInvalidClient, Status: http.StatusUnauthorized, Description: desc}
}

// ErrInvalidGrant builds an invalid_grant error (400).
func ErrInvalidGrant(desc string) *Error {
	return &Error{Code: CodeInvalidGrant, Status: http.StatusBadRequest, Description: desc}
}

// ErrUnauthorizedClient builds an unauthorized_client error (403).
func ErrUnauthorizedClient(desc string) *Error {
	return &Error{Code: CodeUnauthorizedClient, Status: http.StatusForbidden, Description: desc}
}

// ErrUnsupportedGrantType builds an unsupported_grant_type error (400).
func ErrUnsupportedGrantType(desc string) *Error {
	return &Error{Code: CodeUnsupportedGrantType, Status: http.StatusBadRequest, Description: desc}
}

// ErrInvalidScope builds an invalid_scope error (400).
func ErrInvalidScope(desc string) *Error {
	return &Error{Code: CodeInvalidScope, Status: http.StatusBadRequest, Description: desc}
}

// ErrAccessDenied builds an access_denied error (403).
func ErrAccessDenied(desc string) *Error {
	return &Error{Code: CodeAccessDenied, Status: http.StatusForbidden, Description: desc}
}

// ErrServerError builds a server_error (500) with a generic description.
// The underlying cause is for logs, never for the response body.
func ErrServerError() *Error {
	return &Error{Code: CodeServerError, Status: http.StatusInternalServerError, Description: "internal server error"}
}

// AsError normalizes any error into a protocol *Error. Unknown errors
// become server_error so infrastructure detail never leaks.
func AsError(err error) *Error {
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	return ErrServerError()
}

// IsCode reports whether err is a protocol error with the given code.
func IsCode(err error, code string) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Code == code
}
