package amqp

import (
	"encoding/json"
	"time"
)

const (
	EntryTypeIncome  = "income"
	EntryTypeExpense = "expense"
)

// EntryEventMessage announces that a user created or deleted a transaction
// entry. It carries only identifiers; the worker re-reads the user's data
// from the database before generating notifications.
type EntryEventMessage struct {
	UserID    int64     `json:"user_id"`
	EntryID   int64     `json:"entry_id"`
	EntryType string    `json:"entry_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEventMessage creates an event for the given entry.
func NewEntryEventMessage(userID, entryID int64, entryType string) *EntryEventMessage {
	return &EntryEventMessage{
		UserID:    userID,
		EntryID:   entryID,
		EntryType: entryType,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *EntryEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventMessageFromJSON creates a message from JSON bytes.
func EntryEventMessageFromJSON(data []byte) (*EntryEventMessage, error) {
	var msg EntryEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
