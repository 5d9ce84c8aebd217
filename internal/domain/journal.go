package domain

import (
	"encoding/json"
	"time"
)

// JournalSession is a session known to the change journal.
type JournalSession struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalEvent is one recorded store change. The journal is a trace; it is
// never replayed into a store.
type JournalEvent struct {
	EventID   string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Kind      ChangeKind      `json:"kind"`
	Fields    []Field         `json:"fields"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
