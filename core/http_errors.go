package core

import "net/http"

// HTTPError is an error with an HTTP status code and a stable machine
// code. Message is optional human-readable detail; when empty the
// standard status text is used.
type HTTPError struct {
	Code    int    // HTTP status code
	Key     string // Stable error code (e.g. "not_found")
	Message string // Optional detail for the client
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key
}

// WithMessage returns a copy of the error carrying client-facing detail.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrUnprocessableEntity   = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)
