package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// NewErrorHandler returns the default JSON error handler. Client errors are
// logged at warn level and server errors at error level; the response body is
// produced by JSONError.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}

	return func(ctx Context, err error) {
		status, _ := StatusOf(err)
		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("handler"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
