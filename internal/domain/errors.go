package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// BotError represents a structured assistant error surfaced to API callers
type BotError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewBotError creates a new BotError
func NewBotError(code, message string, retryable bool) *BotError {
	return &BotError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
}

// NewBotErrorWithCause creates a new BotError with an underlying cause
func NewBotErrorWithCause(code, message string, retryable bool, err error) *BotError {
	return &BotError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Err:       err,
	}
}

// Error codes from the chat API contract
const (
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeModelAccessDenied    = "MODEL_ACCESS_DENIED"
	ErrCodeRetrievalUnavailable = "RETRIEVAL_UNAVAILABLE"
	ErrCodeTimeout              = "TIMEOUT"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

var httpByCode = map[string]int{
	ErrCodeInvalidRequest:       http.StatusBadRequest,
	ErrCodeUnauthorized:         http.StatusUnauthorized,
	ErrCodeForbidden:            http.StatusForbidden,
	ErrCodeModelAccessDenied:    http.StatusServiceUnavailable,
	ErrCodeRetrievalUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:              http.StatusGatewayTimeout,
	ErrCodeInternalError:        http.StatusInternalServerError,
}

// HTTPStatus maps an error code to its HTTP status, defaulting to 500
func HTTPStatus(code string) int {
	if status, ok := httpByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsBotError returns err as a BotError, normalizing anything else to INTERNAL_ERROR
func AsBotError(err error) *BotError {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}
	return NewBotErrorWithCause(ErrCodeInternalError, "Unhandled error", false, err)
}
