package websocket

import (
	"encoding/json"

	"github.com/mintlabs/mint-backend/internal/models"
)

// Actions understood by the ingest endpoint.
const (
	ActionIngest      = "ingest"
	ActionSubscribe   = "subscribe_samples"
	ActionUnsubscribe = "unsubscribe_samples"

	ActionAck         = "ack"
	ActionError       = "error"
	ActionSampleAdded = "sample_added"
)

// TopicSamples is the topic stored samples are published on.
const TopicSamples = "samples"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encode(action string, payload interface{}) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw, _ = json.Marshal(err.Error())
		action = ActionError
	}
	b, _ := json.Marshal(Message{Action: action, Payload: raw})
	return b
}

// NewErrorMessage builds an error message for a client.
func NewErrorMessage(msg string) []byte {
	return encode(ActionError, map[string]string{"message": msg})
}

// NewAckMessage confirms how many readings were accepted for ingestion.
func NewAckMessage(accepted int) []byte {
	return encode(ActionAck, map[string]int{"accepted": accepted})
}

// NewSampleAddedMessage announces a stored sample.
func NewSampleAddedMessage(row models.SampleRow) []byte {
	return encode(ActionSampleAdded, row)
}
