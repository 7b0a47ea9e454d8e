// Package core holds the HTTP boundary helpers shared by all modules:
// JSON rendering and the error-to-status mapping.
package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorDetail is the error envelope returned to clients.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes the error envelope for err. HTTPError values render
// with their own status and code; anything else is a generic server
// fault, its detail deliberately kept off the wire.
func JSONError(w http.ResponseWriter, err error) {
	httpErr := ErrInternalServerError
	var known HTTPError
	if errors.As(err, &known) {
		httpErr = known
	}

	detail := ErrorDetail{
		Code:    httpErr.Key,
		Message: httpErr.Message,
	}
	if detail.Message == "" {
		detail.Message = http.StatusText(httpErr.Code)
	}

	JSON(w, httpErr.Code, struct {
		Error ErrorDetail `json:"error"`
	}{Error: detail})
}
