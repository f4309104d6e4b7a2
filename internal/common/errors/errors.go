// Package errors provides the gateway's standardized error codes and the
// user-facing messages attached to them.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputEmpty   ErrorCode = "INPUT_EMPTY"
	ErrCodeInputInvalid ErrorCode = "INPUT_INVALID"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"

	ErrCodeUpstreamModelFailed ErrorCode = "UPSTREAM_MODEL_FAILED"
	ErrCodeUpstreamImageFailed ErrorCode = "UPSTREAM_IMAGE_FAILED"
	ErrCodeSearchFailed        ErrorCode = "SEARCH_FAILED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. The service answers in Indonesian.
const (
	MsgMessageEmpty = "Message kosong"
	MsgPromptEmpty  = "Prompt kosong"
	MsgRateLimited  = "Terlalu banyak request, coba lagi dalam 1 menit"
	MsgServerError  = "Server error"
	MsgImageFailed  = "Gagal generate image"
	MsgInvalidBody  = "Request tidak valid"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInputEmptyError reports a missing or blank required field.
func NewInputEmptyError(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputEmpty,
		Message:   message,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputInvalidError reports a body that failed schema validation.
func NewInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   MsgInvalidBody,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError reports a client that exhausted its window.
func NewRateLimitedError(clientID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   MsgRateLimited,
		Details:   fmt.Sprintf("clientId: %s", clientID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamModelError reports an unrecoverable chat pipeline failure.
func NewUpstreamModelError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamModelFailed,
		Message:   MsgServerError,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamImageError reports an image generation failure.
func NewUpstreamImageError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamImageFailed,
		Message:   MsgImageFailed,
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchFailedError is logged, never surfaced; search failures degrade to empty evidence.
func NewSearchFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFailed,
		Message:   "Web search failed",
		Details:   fmt.Sprintf("query: %s, error: %s", query, errDetails(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError is logged, never surfaced.
func NewCacheUnavailableError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Persistent cache unavailable",
		Details:   fmt.Sprintf("op: %s, error: %s", op, errDetails(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgServerError,
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus returns the HTTP status for an error code. Input and limit
// failures keep their 4xx meaning; upstream failures are reported as 502.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInputEmpty, ErrCodeInputInvalid:
		return http.StatusBadRequest
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamModelFailed, ErrCodeUpstreamImageFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INPUT"):
		return "INPUT"
	case strings.Contains(codeStr, "RATE"):
		return "LIMIT"
	case strings.Contains(codeStr, "UPSTREAM") || strings.Contains(codeStr, "SEARCH"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}

// IsSurfaced reports whether errors with this code ever reach the caller.
// Search and cache failures are always recovered locally.
func IsSurfaced(code ErrorCode) bool {
	switch code {
	case ErrCodeSearchFailed, ErrCodeCacheUnavailable:
		return false
	default:
		return true
	}
}
