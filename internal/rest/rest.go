package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError writes an ErrorResponse body with the given status.
func WriteError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		log.Errorf("failed to encode error response: %v", encodeErr)
	}
}

// WriteJSON encodes body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// QueryTime parses the RFC3339 query parameter name. On failure it writes a 400 response and returns false.
func QueryTime(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	value, err := time.Parse(time.RFC3339, r.URL.Query().Get(name))
	if err != nil {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s (date) format", name),
			fmt.Sprintf("'%s' must be in RFC3339 format", name))
		return time.Time{}, false
	}
	return value, true
}
