package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	commands *commands.Commands
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(cmds *commands.Commands) *UserHandler {
	return &UserHandler{commands: cmds}
}

// CreateUserPayload defines the structure for user creation requests.
type CreateUserPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create handles adding a new user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.commands.AddUser(r.Context(), payload.Name, payload.Email)
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to add user")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, msg)
}

// GetAll handles listing every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.commands.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
