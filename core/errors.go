package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidToken covers every access token verification failure: bad
	// signature, malformed structure, expired. Callers never need a finer
	// distinction; the cause stays in logs.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotFound is returned by stores for absent, expired or
	// already-consumed entries. Indistinguishable on purpose.
	ErrNotFound = errors.New("not found")
)

// ErrorCode is the stable error identifier returned to clients. Each code
// maps to exactly one HTTP status.
type ErrorCode string

const (
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeGatewayTimeout     ErrorCode = "GATEWAY_TIMEOUT"
	CodeInternal           ErrorCode = "INTERNAL_SERVER_ERROR"
)

// Status returns the HTTP status the code renders as.
func (c ErrorCode) Status() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GatewayError is an error with a client-facing code and message. The
// wrapped cause is for logs only and never rendered to clients.
type GatewayError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *GatewayError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.cause
}

// NewError builds a GatewayError wrapping an optional cause.
func NewError(code ErrorCode, message string, cause error) *GatewayError {
	return &GatewayError{Code: code, Message: message, cause: cause}
}

// Unauthorized builds the uniform authentication failure. Expired, reused
// and never-issued credentials all produce this same error.
func Unauthorized(message string, cause error) *GatewayError {
	return NewError(CodeUnauthorized, message, cause)
}

// BadRequest builds a malformed-input failure.
func BadRequest(message string) *GatewayError {
	return NewError(CodeBadRequest, message, nil)
}

// Internal builds a server-side failure.
func Internal(message string, cause error) *GatewayError {
	return NewError(CodeInternal, message, cause)
}

// CodeOf extracts the error code from err, defaulting to
// INTERNAL_SERVER_ERROR for untyped errors.
func CodeOf(err error) ErrorCode {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-facing message from err.
func MessageOf(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Message
	}
	return "internal server error"
}
