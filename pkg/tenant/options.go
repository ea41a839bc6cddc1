package tenant

import (
	"log/slog"
	"net/http"
)

// ErrorHandler renders gate failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	errorHandler ErrorHandler
	skipPaths    []string
	logger       *slog.Logger
}

// Option configures the resolver, the middleware and the gates.
type Option func(*config)

// WithErrorHandler overrides the JSON error renderer of the gates.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets paths that bypass tenant resolution, such as health
// checks and metrics. Each entry matches itself and everything below it.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithLogger sets the logger used to report resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	WriteError(w, err)
}
