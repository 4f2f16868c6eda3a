// internal/common/errors/handler.go
package errors

import (
	"time"
)

// NoticeLevel is the severity of a user-visible notification.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a transient, non-blocking notification (a toast). It never
// replaces the main content area.
type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	Code      ErrorCode   `json:"code,omitempty"`
	Retryable bool        `json:"retryable"`
	At        time.Time   `json:"at"`
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorHandler turns fetch errors into notices and logs them.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalises err, logs it and returns the notice to surface.
func (h *ErrorHandler) Handle(listing, operation string, err error) Notice {
	stdErr := h.normalizeError(err)
	h.logError(listing, operation, stdErr)

	level := NoticeError
	if stdErr.Retryable {
		level = NoticeWarning
	}
	return Notice{
		Level:     level,
		Message:   UserMessage(stdErr),
		Code:      stdErr.Code,
		Retryable: stdErr.Retryable,
		At:        stdErr.Timestamp,
	}
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) logError(listing, operation string, stdErr *StandardError) {
	fields := map[string]interface{}{
		"listing":       listing,
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if stdErr.Status != 0 {
		fields["status"] = stdErr.Status
	}
	if stdErr.Retryable {
		h.logger.Warn("listing operation failed", fields)
		return
	}
	h.logger.Error("listing operation failed", fields)
}
