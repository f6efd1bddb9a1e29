// Package httputil centralizes the JSON response envelope so every handler
// returns the same shape for successes and failures.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "garita/pkg/domain-errors"
)

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the {error, error_description}
// envelope. The error field carries the stable reason code when one is
// attached, otherwise the transport code. Internal errors omit the
// description so store failures never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	wire := string(code)
	if reason := dErrors.ReasonOf(err); reason != "" {
		wire = reason
	}

	body := map[string]string{"error": wire}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Description != "" {
		body["error_description"] = de.Description
	}
	WriteJSON(w, status, body)
}
