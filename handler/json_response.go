package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tenantkit/pkg/binder"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type dataBody struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets a custom HTTP status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

// WithJSONMeta adds metadata to a data response.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		if b, ok := r.body.(dataBody); ok {
			b.Meta = meta
			r.body = b
		}
	}
}

// JSON renders v as {"data": v} with status 200.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: dataBody{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Raw renders v as the whole JSON body, without the data envelope.
func Raw(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders err as {"error", "message"}. Status and key come from
// StatusOf; the message of a 5xx never carries err's text.
func JSONError(err error, opts ...JSONOption) Response {
	status, key := StatusOf(err)
	message := http.StatusText(status)
	if status < http.StatusInternalServerError {
		var httpErr HTTPError
		if !errors.As(err, &httpErr) {
			message = err.Error()
		}
	}

	r := &jsonResponse{status: status, body: ErrorBody{Error: key, Message: message}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StatusOf maps err to an HTTP status and error key. HTTPError carries its own;
// binder failures are client errors; everything else is a 500.
func StatusOf(err error) (int, string) {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, httpErr.Key
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrUnsupportedMediaType.Code, ErrUnsupportedMediaType.Key
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParsePath):
		return ErrBadRequest.Code, ErrBadRequest.Key
	default:
		return ErrInternalServerError.Code, "internal_error"
	}
}
