package amqp

import (
	"encoding/json"
	"time"
)

// Sync operations carried by RecordSyncMessage.
const (
	OpAppend = "append"
	OpUpdate = "update"
)

// RecordSyncMessage is the lightweight message queued when a record needs to
// be mirrored to the spreadsheet. It carries only the identity; the worker
// fetches the current row from the local database, so a message replayed
// after further edits still writes the latest state.
type RecordSyncMessage struct {
	ID        string    `json:"id"`
	IsGrocery bool      `json:"isGrocery"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordSyncMessage creates a sync message stamped with the current time.
func NewRecordSyncMessage(id string, isGrocery bool, op string) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		IsGrocery: isGrocery,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes a message from JSON bytes.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
