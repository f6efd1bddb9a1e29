// Package domainerrors defines the coded error taxonomy shared by services and
// transport. Services return these; handlers translate them to HTTP via
// pkg/platform/httputil without inspecting error strings.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal_error"
)

// Error carries a transport code, an optional stable machine-readable reason
// (e.g. "visita_ya_adentro") and a human description. Reason strings are part
// of the public contract and must never change once clients depend on them.
type Error struct {
	Code        Code
	Reason      string
	Description string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return string(e.Code) + ": " + e.Reason + ": " + e.Description
	}
	return string(e.Code) + ": " + e.Description
}

// New builds a coded error without a machine-readable reason.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// NewReason builds a coded error carrying a stable reason string.
func NewReason(code Code, reason, description string) *Error {
	return &Error{Code: code, Reason: reason, Description: description}
}

// Is reports whether err (or anything it wraps) is a domain error with the
// given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal for unknown
// error types so callers never leak internals by accident.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf extracts the stable reason string, empty if none is attached.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
