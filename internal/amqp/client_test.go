package amqp

import (
	"testing"
	"time"
)

func TestNewEntryEventMessage(t *testing.T) {
	msg := NewEntryEventMessage(7, 12345, EntryTypeExpense)

	if msg.UserID != 7 {
		t.Errorf("UserID = %v, want 7", msg.UserID)
	}
	if msg.EntryID != 12345 {
		t.Errorf("EntryID = %v, want 12345", msg.EntryID)
	}
	if msg.EntryType != EntryTypeExpense {
		t.Errorf("EntryType = %v, want %v", msg.EntryType, EntryTypeExpense)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestEntryEventMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"user_id": "not_a_number"}`)

	if _, err := EntryEventMessageFromJSON(invalidJSON); err == nil {
		t.Error("EntryEventMessageFromJSON() should fail with invalid JSON")
	}
}
