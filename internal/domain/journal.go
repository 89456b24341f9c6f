package domain

import (
	"encoding/json"
	"time"
)

// JournalEntry is one received message as persisted by the change journal.
type JournalEntry struct {
	ID         int64           `json:"id"`
	ReceivedAt time.Time       `json:"received_at"`
	Topic      string          `json:"topic"`
	Event      string          `json:"event"`
	Ref        string          `json:"ref,omitempty"`
	Frame      json.RawMessage `json:"frame"`
}
