package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	codeBadRequest      = "bad_request"
	codeRequestTooLarge = "request_too_large"
	codeUnavailable     = "unavailable"
	codeInternal        = "internal_error"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// writeJSON writes value as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeError writes a JSON error body. Internal errors omit the description.
func writeError(w http.ResponseWriter, status int, code, description string) {
	if status >= http.StatusInternalServerError {
		description = ""
	}
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// decodeJSON decodes the request body into T, writing a 400 or 413 error
// response and returning false on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeRequestTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
			return req, false
		}
		logger.DebugContext(r.Context(), "invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	return req, true
}
