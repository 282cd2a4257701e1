package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mintlabs/mint-backend/internal/auth"
	"github.com/mintlabs/mint-backend/internal/models"
	ws "github.com/mintlabs/mint-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// submitTimeout bounds how long a connection waits for room in the ingest queue.
const submitTimeout = 5 * time.Second

// ReadingSubmitter queues readings for the background listener.
type ReadingSubmitter interface {
	Submit(ctx context.Context, readings ...models.Reading) error
}

// WebSocketHandler upgrades ingest connections and feeds their readings to
// the background listener.
type WebSocketHandler struct {
	hub      *ws.Hub
	listener ReadingSubmitter
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Origins are checked
// against allowedOrigins; requests without an Origin header (non-browser
// clients) are always accepted.
func NewWebSocketHandler(hub *ws.Hub, listener ReadingSubmitter, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:      hub,
		listener: listener,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn)
	logCtx := log.Info().Str("client_id", client.ID).Str("remote_addr", r.RemoteAddr)
	if claims, ok := auth.FromContext(r.Context()); ok {
		logCtx = logCtx.Str("source", claims.Source)
	}
	logCtx.Msg("Ingest connection opened")

	h.hub.Add(client)
	go client.WritePump()

	// ReadPump returns when the peer goes away; removing the client then
	// ends the write pump.
	go func() {
		client.ReadPump(h.handleIncomingWSMessage)
		h.hub.Remove(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Str("client_id", client.ID).Msg("Error decoding websocket message")
		client.Deliver(ws.NewErrorMessage("Invalid message: " + err.Error()))
		return
	}

	switch msg.Action {
	case ws.ActionIngest:
		h.ingest(client, msg.Payload)

	case ws.ActionSubscribe:
		log.Info().Str("client_id", client.ID).Msg("Client subscribed to samples")
		h.hub.Subscribe(client, ws.TopicSamples)

	case ws.ActionUnsubscribe:
		log.Info().Str("client_id", client.ID).Msg("Client unsubscribed from samples")
		h.hub.Unsubscribe(client, ws.TopicSamples)

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Deliver(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}

func (h *WebSocketHandler) ingest(client *ws.Client, payload json.RawMessage) {
	readings, err := decodeReadings(payload)
	if err != nil {
		log.Warn().Err(err).Str("client_id", client.ID).Msg("Invalid ingest payload")
		client.Deliver(ws.NewErrorMessage("Invalid ingest payload: " + err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	if err := h.listener.Submit(ctx, readings...); err != nil {
		log.Error().Err(err).Str("client_id", client.ID).Int("readings", len(readings)).Msg("Failed to queue readings")
		client.Deliver(ws.NewErrorMessage("Failed to queue readings: " + err.Error()))
		return
	}
	client.Deliver(ws.NewAckMessage(len(readings)))
}

// decodeReadings accepts either a single reading or an array of readings.
func decodeReadings(payload json.RawMessage) ([]models.Reading, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var readings []models.Reading
		if err := json.Unmarshal(trimmed, &readings); err != nil {
			return nil, err
		}
		return readings, nil
	}
	var reading models.Reading
	if err := json.Unmarshal(trimmed, &reading); err != nil {
		return nil, err
	}
	return []models.Reading{reading}, nil
}
