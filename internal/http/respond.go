package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the body of mutation acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already gone; an encode failure here only means a
	// truncated body on a dead connection.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps storage errors onto HTTP statuses: missing records and
// categories are 404, validation failures are 400, everything else is a 500
// with the detail kept out of the response body.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, msg+": not found")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), msg,
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNegativePrice)
}

// decodeJSON decodes the request body into v, rejecting unknown garbage early.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
