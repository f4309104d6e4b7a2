package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Envelope is the JSON body written for every terminal failure.
type Envelope struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
	Code   string `json:"code,omitempty"`
}

// ErrorHandler turns errors into the gateway's JSON failure envelope.
type ErrorHandler struct {
	logger      Logger
	statusCodes bool
}

// NewErrorHandler creates a handler. When statusCodes is false every
// envelope is written with 200 OK and callers rely on the status field.
func NewErrorHandler(logger Logger, statusCodes bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, statusCodes: statusCodes}
}

// Write normalizes err, logs it and writes the envelope.
func (h *ErrorHandler) Write(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"code":     string(stdErr.Code),
		"category": GetErrorCategory(stdErr.Code),
		"details":  stdErr.Details,
	}
	if r != nil {
		fields["path"] = r.URL.Path
	}
	if stdErr.Code == ErrCodeInternal || stdErr.Code == ErrCodeUpstreamModelFailed {
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Warn("request rejected", fields)
	}

	status := http.StatusOK
	if h.statusCodes {
		status = HTTPStatus(stdErr.Code)
	}
	WriteJSON(w, status, Envelope{
		Status: false,
		Msg:    stdErr.Message,
		Code:   string(stdErr.Code),
	})
}

// Normalize returns err as a *StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgServerError,
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// WriteJSON writes v as a JSON response body.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
