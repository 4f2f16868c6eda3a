// Package errors provides the standardized error taxonomy used by the listing engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Transport failures: no response was received.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout ErrorCode = "NETWORK_TIMEOUT"

	// The backend answered with a non-2xx status, or an unreadable body.
	ErrCodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// Client-side, pre-fetch.
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodePageOutOfRange ErrorCode = "PAGE_OUT_OF_RANGE"

	// Supporting infrastructure.
	ErrCodeCache   ErrorCode = "CACHE_ERROR"
	ErrCodeSession ErrorCode = "SESSION_ERROR"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured listing error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Status    int                    `json:"status,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("StandardError[%s/%d]: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Constructors
// ==========================

// NewNetworkError creates a retryable transport error.
func NewNetworkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetwork,
		Message:   "Network request failed",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTimeoutError creates a retryable transport timeout. It is still a network error.
func NewTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Network request timed out",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamError creates an error for a non-2xx backend response.
// message is the server supplied message, if any.
func NewUpstreamError(status int, message string) *StandardError {
	msg := message
	if msg == "" {
		msg = fmt.Sprintf("Backend returned %d %s", status, http.StatusText(status))
	}
	return &StandardError{
		Code:      ErrCodeUpstream,
		Message:   msg,
		Status:    status,
		Retryable: status == http.StatusTooManyRequests || status >= 500,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedResponseError creates an error for a 2xx response whose body cannot be decoded.
func NewMalformedResponseError(status int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Backend response could not be decoded",
		Details:   errString(err),
		Status:    status,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationError creates a non-retryable client-side validation error.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   fmt.Sprintf("Invalid value for %s", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewPageOutOfRangeError reports a page request outside [1, lastPage].
func NewPageOutOfRangeError(page, lastPage int) *StandardError {
	return &StandardError{
		Code:      ErrCodePageOutOfRange,
		Message:   "Requested page is out of range",
		Details:   fmt.Sprintf("page: %d, lastPage: %d", page, lastPage),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheError wraps a cache backend failure. Cache errors never reach the user.
func NewCacheError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCache,
		Message:   fmt.Sprintf("Cache %s failed", op),
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSessionError wraps a failure to read the session token.
func NewSessionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSession,
		Message:   "Session token unavailable",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Inspection
// ==========================

// As returns the first StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	stdErr, ok := As(err)
	return ok && (stdErr.Code == ErrCodeNetwork || stdErr.Code == ErrCodeTimeout)
}

// IsUpstream reports whether err came from a response the backend did send.
func IsUpstream(err error) bool {
	stdErr, ok := As(err)
	return ok && (stdErr.Code == ErrCodeUpstream || stdErr.Code == ErrCodeMalformedResponse)
}

// IsNotFound reports an upstream 404. Singleton lookups treat it as "no data".
func IsNotFound(err error) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == ErrCodeUpstream && stdErr.Status == http.StatusNotFound
}

// IsRetryable reports whether repeating the same trigger may succeed.
func IsRetryable(err error) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Retryable
}

// StatusCategory classifies an HTTP status the way the UI reports it.
func StatusCategory(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "credentials"
	case http.StatusForbidden:
		return "verification"
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return "validation"
	case http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests:
		return "client"
	}
	if status >= 500 {
		return "server"
	}
	return "client"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "NETWORK"):
		return "NETWORK"
	case code == ErrCodeUpstream || code == ErrCodeMalformedResponse:
		return "UPSTREAM"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "RANGE"):
		return "VALIDATION"
	case code == ErrCodeCache || code == ErrCodeSession:
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}

// UserMessage returns the text shown in the transient notification for err.
func UserMessage(err error) string {
	stdErr, ok := As(err)
	if !ok {
		return "Something went wrong"
	}
	switch stdErr.Code {
	case ErrCodeNetwork, ErrCodeTimeout:
		return "Connection error, check your internet connection"
	case ErrCodeMalformedResponse:
		return "Server error, please try again later"
	case ErrCodeValidation, ErrCodePageOutOfRange:
		return "Please check the selected filters"
	case ErrCodeUpstream:
		switch StatusCategory(stdErr.Status) {
		case "credentials":
			return "Your session has expired, please sign in again"
		case "verification":
			return "Access denied, account verification required"
		case "server":
			return "Server error, please try again later"
		}
		if stdErr.Status == http.StatusTooManyRequests {
			return "Too many attempts, please try again later"
		}
		if stdErr.Status == http.StatusNotFound {
			return "Resource not found"
		}
		return stdErr.Message
	}
	return "Something went wrong"
}
