// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client (the
// CSV export being the one exception). Rather than repeating the same
// three lines (set header, set status, encode JSON) in every handler, we
// centralise them here, together with the mapping from error kind to
// HTTP status.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/school-records/internal/types"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, ...).
// Error responses always look like:
//
//	{ "status": "error", "kind": "InvalidInput", "error": "name is required",
//	  "fields": [ { "field": "name", "message": "name is required" } ] }
//
// Kind is one of the types.ErrorKind values so clients can branch on it
// without parsing the message. Fields is present for InvalidInput only.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string             `json:"status"`
	Kind   types.ErrorKind    `json:"kind,omitempty"`
	Error  string             `json:"error"`
	Fields []types.FieldError `json:"fields,omitempty"`
}

// Status string constants. Use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape, with
// its kind filled in.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Kind:   types.KindOf(err),
		Error:  err.Error(),
	}
}

// ValidationError turns a set of failed fields into a Response that lists
// each of them.
func ValidationError(errs types.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Kind:   types.KindInvalidInput,
		Error:  errs.Error(),
		Fields: errs,
	}
}

// StatusFor maps an error kind to its HTTP status.
//
//	InvalidInput                       → 400
//	NotFound                           → 404
//	DuplicateKey, DuplicateRegistration → 409
//	anything else (StorageFailure)     → 500
func StatusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindInvalidInput:
		return http.StatusBadRequest
	case types.KindNotFound:
		return http.StatusNotFound
	case types.KindDuplicateKey, types.KindDuplicateRegistration:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status its kind maps to.
func Error(w http.ResponseWriter, err error) error {
	var verrs types.ValidationErrors
	if errors.As(err, &verrs) {
		return WriteJSON(w, http.StatusBadRequest, ValidationError(verrs))
	}
	return WriteJSON(w, StatusFor(types.KindOf(err)), GeneralError(err))
}
