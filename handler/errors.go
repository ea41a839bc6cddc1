package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError represents an HTTP error with status code and machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized         = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden            = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict             = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity  = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)
