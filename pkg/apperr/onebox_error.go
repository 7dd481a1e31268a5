// Package apperr carries coded errors from handlers to the HTTP error envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes rendered in the error envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeMissingField     = "MISSING_FIELD"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyExists    = "ALREADY_EXISTS"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      = "RATE_LIMITED"

	CodeDatabaseError = "DATABASE_ERROR"
	CodeExternalError = "EXTERNAL_ERROR"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
	CodeTimeout       = "TIMEOUT"
	CodeInternalError = "INTERNAL_ERROR"
	CodeUnknown       = "UNKNOWN_ERROR"
)

var statusByCode = map[string]int{
	CodeBadRequest:       http.StatusBadRequest,
	CodeValidationFailed: http.StatusUnprocessableEntity,
	CodeInvalidInput:     http.StatusBadRequest,
	CodeMissingField:     http.StatusBadRequest,
	CodeNotFound:         http.StatusNotFound,
	CodeAlreadyExists:    http.StatusConflict,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	CodeRateLimited:      http.StatusTooManyRequests,
	CodeDatabaseError:    http.StatusInternalServerError,
	CodeExternalError:    http.StatusBadGateway,
	CodeUnavailable:      http.StatusServiceUnavailable,
	CodeTimeout:          http.StatusGatewayTimeout,
	CodeInternalError:    http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for a code; unknown codes are 500.
func StatusOf(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeFor names an HTTP status raised outside our handlers (routing, body limit).
func CodeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return CodePayloadTooLarge
	case http.StatusUnprocessableEntity:
		return CodeValidationFailed
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeUnavailable
	case http.StatusGatewayTimeout:
		return CodeTimeout
	}
	if status >= 500 {
		return CodeInternalError
	}
	return CodeUnknown
}

// AppError is a coded error with the status it renders as.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func newError(code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: StatusOf(code)}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// From finds an AppError anywhere in err's chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func BadRequest(message string) *AppError {
	return newError(CodeBadRequest, message)
}

func ValidationFailed(message string) *AppError {
	return newError(CodeValidationFailed, message)
}

func InvalidInput(field, reason string) *AppError {
	return newError(CodeInvalidInput, fmt.Sprintf("invalid input for '%s': %s", field, reason)).
		WithDetail("field", field)
}

func MissingField(field string) *AppError {
	return newError(CodeMissingField, "missing required field: "+field).WithDetail("field", field)
}

func AlreadyExists(resource string) *AppError {
	return newError(CodeAlreadyExists, resource+" already exists")
}

func DatabaseError(operation string, err error) *AppError {
	return newError(CodeDatabaseError, "database error: "+operation).WithError(err)
}

func ExternalError(service string, err error) *AppError {
	return newError(CodeExternalError, "external service error: "+service).
		WithDetail("service", service).
		WithError(err)
}

// Unavailable reports an optional backend that is not configured.
func Unavailable(service string) *AppError {
	return newError(CodeUnavailable, service+" is not configured").WithDetail("service", service)
}

func InternalWithError(err error) *AppError {
	return newError(CodeInternalError, "internal server error").WithError(err)
}
