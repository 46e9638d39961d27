// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders a friendly
// page in its place. Handlers hold one as ErrLog.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, requestFields(r, err)...)
	e.render(w, r, http.StatusBadRequest, "Bad request", userMsg, backURL)
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, requestFields(r, err)...)
	e.render(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, title, "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_message", pageData{BaseVM: vm, Message: msg})
}

func requestFields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
}
