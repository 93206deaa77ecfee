// Package respond writes the service's JSON response envelopes.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": errorType, "message": message}.
func Error(w http.ResponseWriter, statusCode int, errorType, message string) {
	JSON(w, statusCode, ErrorResponse{Error: errorType, Message: message})
}

// Validation writes a 400 with per-field failures when err is a
// validation error, and a generic 400 otherwise.
func Validation(w http.ResponseWriter, err error) {
	if ve, ok := validation.AsError(err); ok {
		JSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request validation failed",
			Fields:  ve.Fields,
		})
		return
	}
	Error(w, http.StatusBadRequest, "validation_error", err.Error())
}

// Decode reads a JSON body into dst and validates it. On failure it writes
// the 400 response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return false
	}
	if err := validation.Struct(dst); err != nil {
		Validation(w, err)
		return false
	}
	return true
}

// PathUUID reads the named mux route variable and checks that it is a UUID.
// On failure it writes a 400 and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_id", fmt.Sprintf("%s must be a valid UUID", name))
		return "", false
	}
	return id.String(), true
}
