package api

import (
	"encoding/json"
	"errors"
	"net/http"

	kanerr "github.com/amterp/cardman/internal/errors"
)

// ErrorResponse is the JSON body of every error reply. Fields is set only for
// validation failures.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error response, mapping domain errors to HTTP status codes.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: err.Error()}

	var fields kanerr.FieldErrors
	switch {
	case errors.As(err, &fields):
		status = http.StatusBadRequest
		resp.Error = "validation failed"
		resp.Fields = fields
	case kanerr.IsNotFound(err):
		status = http.StatusNotFound
	case kanerr.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, kanerr.ErrClosed):
		status = http.StatusServiceUnavailable
	}

	JSON(w, status, resp)
}

// BadRequest writes a 400 error with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}
