package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/NomadCrew/cats-backend/logger"
)

type ErrorType string

const (
	ValidationError    ErrorType = "VALIDATION_ERROR"
	NotFoundError      ErrorType = "NOT_FOUND"
	ConflictError      ErrorType = "CONFLICT"
	DatabaseError      ErrorType = "DATABASE_ERROR"
	SerializationError ErrorType = "SERIALIZATION_ERROR"
	AuthError          ErrorType = "AUTHENTICATION_ERROR"
	RateLimitError     ErrorType = "RATE_LIMIT_EXCEEDED"
	ServerError        ErrorType = "SERVER_ERROR"
)

// AppError represents a classified application error. Every failure that
// crosses the store or handler boundary is one of these.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error should be rendered with.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// IsClientError reports whether the detail is safe to show to the caller.
func (e *AppError) IsClientError() bool {
	status := e.GetHTTPStatus()
	return status >= 400 && status < 500
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidID is returned when a path or body identifier cannot be parsed
// as a document id.
func InvalidID(raw string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    "Invalid identifier",
		Detail:     fmt.Sprintf("%q is not a valid id", raw),
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// StoreFailure classifies a driver-level failure. The raw error is logged
// here and kept in Raw; the client only ever sees the generic message.
func StoreFailure(op string, err error) *AppError {
	logger.GetLogger().Errorw("Database error", "operation", op, "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     fmt.Sprintf("%s: %v", op, err),
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

// SerializationFailure classifies a document that could not be decoded
// into the expected shape.
func SerializationFailure(op string, err error) *AppError {
	logger.GetLogger().Errorw("Failed to decode store response", "operation", op, "error", err)
	return &AppError{
		Type:       SerializationError,
		Message:    "Failed to process stored data",
		Detail:     fmt.Sprintf("%s: %v", op, err),
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case AuthError:
		return http.StatusUnauthorized
	case RateLimitError:
		return http.StatusTooManyRequests
	case DatabaseError, SerializationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
