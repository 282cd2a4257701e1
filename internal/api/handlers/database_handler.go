package handlers

import (
	"net/http"

	"github.com/mintlabs/mint-backend/internal/commands"
	"github.com/rs/zerolog/log"
)

// DatabaseHandler handles schema management requests.
type DatabaseHandler struct {
	commands *commands.Commands
}

// NewDatabaseHandler creates a new DatabaseHandler.
func NewDatabaseHandler(cmds *commands.Commands) *DatabaseHandler {
	return &DatabaseHandler{commands: cmds}
}

// Initialize ensures the schema exists.
func (h *DatabaseHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	msg, err := h.commands.InitializeDB(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}
