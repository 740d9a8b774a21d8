// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers can report a failure in one call: the operator gets the real
// error in the log, the user gets a friendly message and a way back.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger over the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a malformed-request failure and renders an
// access-style error page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log.Warn(op,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	RenderForbidden(w, r, userMsg, backURL)
}

// LogNotFound logs a missing-entity failure and renders the not-found page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log.Warn(op,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	RenderNotFound(w, r, userMsg, backURL)
}

// LogServerError logs an unexpected failure and renders an error page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, op string, err error, userMsg, backURL string) {
	e.log.Error(op,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	RenderForbidden(w, r, userMsg, backURL)
}
