package events

import (
	"encoding/json"
	"time"
)

// MutationMessage announces a ledger mutation to downstream consumers.
// It carries only the entity kind, the operation and the entity id; a
// consumer that needs the full record reads it back through the API.
type MutationMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMutationMessage(entity, op, id string) *MutationMessage {
	return &MutationMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
