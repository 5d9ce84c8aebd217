package domain

import "time"

// ConversationID is an opaque identifier assigned by the caller.
type ConversationID string

// Message is a single entry in the conversation log.
// The store never edits a message after it is appended.
//
// Payload holds every other field of the message (attachments and the like).
// In JSON those fields sit next to sender, timestamp and content.
type Message struct {
	Sender    Sender
	Timestamp time.Time
	Content   string
	Payload   map[string]any
}

// Exchange groups consecutive messages, typically a user question and the AI answer.
type Exchange struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Timestamp        time.Time         `json:"timestamp"`
	Messages         []Message         `json:"messages"`
	IsComplete       bool              `json:"is_complete"`
	SideboardContent *SideboardContent `json:"sideboard_content,omitempty"`
}

// ActiveComponent describes the transient UI widget currently shown.
type ActiveComponent struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// SideboardContent is one entry shown in the sideboard panel.
type SideboardContent struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	ContentType string           `json:"content_type,omitempty"`
	Actions     []map[string]any `json:"actions,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// SideboardUpdate carries the optional fields of a sideboard update.
type SideboardUpdate struct {
	Title       string           `json:"title,omitempty"`
	Content     string           `json:"content,omitempty"`
	ContentType string           `json:"content_type,omitempty"`
	Actions     []map[string]any `json:"actions,omitempty"`
}

// ConversationState is a point-in-time copy of a store.
type ConversationState struct {
	ConversationID         *ConversationID    `json:"conversation_id"`
	Messages               []Message          `json:"messages"`
	Exchanges              []Exchange         `json:"exchanges"`
	ActiveComponent        *ActiveComponent   `json:"active_component"`
	ActiveSideboardContent *SideboardContent  `json:"active_sideboard_content"`
	SideboardHistory       []SideboardContent `json:"sideboard_history"`
}

// Change is emitted to observers after every mutation.
type Change struct {
	Kind    ChangeKind        `json:"kind"`
	Fields  []Field           `json:"fields"`
	Ts      int64             `json:"ts"` // Unix milliseconds
	Payload any               `json:"payload,omitempty"`
	State   ConversationState `json:"state"`
}

// Has reports whether the change touched the given field.
func (c Change) Has(f Field) bool {
	for _, field := range c.Fields {
		if field == f {
			return true
		}
	}
	return false
}
