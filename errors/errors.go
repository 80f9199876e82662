package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies an error class independently of the HTTP status
type ErrorCode int32

const (
	ErrorCode_HTTP_OK                  ErrorCode = 0
	ErrorCode_INTERNAL                 ErrorCode = 1
	ErrorCode_INVALID_PAYLOAD          ErrorCode = 2
	ErrorCode_UNSUPPORTED_CONTENT_TYPE ErrorCode = 3
	ErrorCode_UNAUTHENTICATED          ErrorCode = 4
	ErrorCode_INVALID_SIGNATURE        ErrorCode = 5
	ErrorCode_STORAGE_FAILED           ErrorCode = 6
	ErrorCode_NOT_FOUND                ErrorCode = 7
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                  "HTTP_OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_PAYLOAD:          "INVALID_PAYLOAD",
	ErrorCode_UNSUPPORTED_CONTENT_TYPE: "UNSUPPORTED_CONTENT_TYPE",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_INVALID_SIGNATURE:        "INVALID_SIGNATURE",
	ErrorCode_STORAGE_FAILED:           "STORAGE_FAILED",
	ErrorCode_NOT_FOUND:                "NOT_FOUND",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}

// AppError is the error type returned to HTTP callers
type AppError struct {
	Raw      error
	HTTPCode int
	Code     ErrorCode
	Message  string
	Details  map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "internal server error",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Authentication Errors

// ErrUnauthenticated covers a missing or wrong shared secret or provider token.
func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "unauthorized",
	}
}

// ErrInvalidSignature covers a body whose HMAC signature does not verify.
func ErrInvalidSignature() AppError {
	return AppError{
		HTTPCode: http.StatusForbidden,
		Code:     ErrorCode_INVALID_SIGNATURE,
		Message:  "invalid signature",
	}
}

// Input Errors
func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "invalid JSON",
	}
}

func ErrUnsupportedContentType(contentType string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_UNSUPPORTED_CONTENT_TYPE,
		Message:  "unsupported content type",
	}.WithDetail("content_type", contentType)
}

// Storage Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_FAILED,
		Message:  fmt.Sprintf("storage operation failed: %s", operation),
	}
}
