package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/rs/zerolog/log"
)

// SampleHandler handles HTTP requests for time series samples.
type SampleHandler struct {
	commands *commands.Commands
}

// NewSampleHandler creates a new SampleHandler.
func NewSampleHandler(cmds *commands.Commands) *SampleHandler {
	return &SampleHandler{commands: cmds}
}

// CreateSamplePayload defines the structure for sample creation requests.
// Timestamp is milliseconds since the Unix epoch.
type CreateSamplePayload struct {
	Timestamp *int64  `json:"timestamp"`
	Value     float64 `json:"value"`
	Metadata  string  `json:"metadata"`
}

// Create handles recording a new sample.
func (h *SampleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateSamplePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.Timestamp == nil {
		http.Error(w, "invalid timestamp: timestamp is required", http.StatusBadRequest)
		return
	}

	msg, err := h.commands.AddSample(r.Context(), *payload.Timestamp, payload.Value, payload.Metadata)
	if err != nil {
		log.Error().Err(err).Int64("timestamp", *payload.Timestamp).Msg("Failed to add sample")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, msg)
}

// GetAll handles listing every sample.
func (h *SampleHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	samples, err := h.commands.ListSamples(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list samples")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, samples)
}
