package handler

import (
	"net/http"
)

// HandlerFunc handles a request bound to R and returns the response to render.
//
//	type projectRequest struct {
//		ID int64 `path:"id"`
//	}
//
//	get := handler.HandlerFunc[projectRequest](func(ctx handler.Context, req projectRequest) handler.Response {
//		project, err := projects.Get(ctx, req.ID)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(project)
//	})
type HandlerFunc[R any] func(ctx Context, req R) Response

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// ResponseFunc adapts a plain function to Response.
type ResponseFunc func(w http.ResponseWriter, r *http.Request) error

func (f ResponseFunc) Render(w http.ResponseWriter, r *http.Request) error { return f(w, r) }

// Bind parses HTTP requests into typed values.
type Bind func(r *http.Request, v any) error

// ErrorHandler handles errors from binding or rendering.
type ErrorHandler func(ctx Context, err error)

// WrapOption configures Wrap.
type WrapOption[R any] func(*wrapConfig[R])

type wrapConfig[R any] struct {
	binders      []Bind
	errorHandler ErrorHandler
}

// WithBinders sets request binders applied in order.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler[R any](h ErrorHandler) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// Wrap converts a typed HandlerFunc to http.HandlerFunc. Binding and
// rendering failures, as well as a nil response, go to the error handler,
// which defaults to NewErrorHandler(nil).
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.errorHandler == nil {
		cfg.errorHandler = NewErrorHandler(nil)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				cfg.errorHandler(ctx, err)
				return
			}
		}

		response := h(ctx, req)
		if response == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := response.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}

// Fail returns a Response that hands err to the error handler configured on
// Wrap instead of rendering anything itself.
func Fail(err error) Response {
	return ResponseFunc(func(http.ResponseWriter, *http.Request) error { return err })
}
