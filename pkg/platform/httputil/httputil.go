// Package httputil holds the JSON response writers shared by every handler.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "pokereview/pkg/domain-errors"
)

// ErrorResponse is the validation-error container returned on every failure.
type ErrorResponse struct {
	Error       string              `json:"error"`
	Description string              `json:"error_description,omitempty"`
	Errors      map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNoContent writes a bare 204.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError translates err into a status and error envelope. Errors that do
// not carry a domain code are reported as internal errors with no description
// so raw store messages never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: string(dErrors.CodeInternal),
		})
		return
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorResponse{
		Error:       string(de.Code),
		Description: de.Message,
		Errors:      de.Fields,
	})
}
