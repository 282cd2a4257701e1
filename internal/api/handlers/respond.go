package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mintlabs/mint-backend/internal/services"
	"github.com/rs/zerolog/log"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeMessage wraps a confirmation text in a JSON object.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps the data layer's error taxonomy onto HTTP status codes.
// The error text always reaches the caller.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTimestamp):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}
