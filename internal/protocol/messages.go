// Package protocol defines the WebSocket message protocol between clients and the state server.
package protocol

import (
	"encoding/json"

	"github.com/RL8/mb-final/internal/domain"
)

// Message types from client to server
const (
	TypeHello                     = "hello"
	TypeSetConversationID         = "set_conversation_id"
	TypeAddMessage                = "add_message"
	TypeSetActiveComponent        = "set_active_component"
	TypeClearActiveComponent      = "clear_active_component"
	TypeUpdateSideboard           = "update_sideboard"
	TypeSetActiveSideboardContent = "set_active_sideboard_content"
	TypeClearConversation         = "clear_conversation"
	TypeGetState                  = "get_state"
)

// Message types from server to client
const (
	TypeHelloAck         = "hello_ack"
	TypeState            = "state"
	TypeChange           = "change"
	TypeSideboardUpdated = "sideboard_updated"
	TypeError            = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage is sent by client to establish connection. A session id
// rejoins an existing session; without one the server opens a new one.
type HelloMessage struct {
	BaseMessage
	UserID     string            `json:"user_id,omitempty"`
	APIKey     string            `json:"api_key,omitempty"`
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage is sent by server after successful hello.
type HelloAckMessage struct {
	BaseMessage
}

type SetConversationIDMessage struct {
	BaseMessage
	ConversationID domain.ConversationID `json:"conversation_id"`
}

type AddMessageMessage struct {
	BaseMessage
	Message domain.Message `json:"message"`
}

type SetActiveComponentMessage struct {
	BaseMessage
	ComponentID string         `json:"component_id"`
	Data        map[string]any `json:"data,omitempty"`
}

type UpdateSideboardMessage struct {
	BaseMessage
	DisplayID string                 `json:"display_id"`
	Data      domain.SideboardUpdate `json:"data"`
}

// SetActiveSideboardContentMessage replaces the active sideboard content.
// A null content clears it.
type SetActiveSideboardContentMessage struct {
	BaseMessage
	Content *domain.SideboardContent `json:"content"`
}

// StateMessage carries a full state snapshot, sent after hello and on get_state.
type StateMessage struct {
	BaseMessage
	State domain.ConversationState `json:"state"`
}

// ChangeMessage is broadcast to every connection of a session after each mutation.
type ChangeMessage struct {
	BaseMessage
	Change domain.Change `json:"change"`
}

// SideboardUpdatedMessage answers update_sideboard with the content created.
type SideboardUpdatedMessage struct {
	BaseMessage
	Content domain.SideboardContent `json:"content"`
}

// ErrorMessage is sent by server when an error occurs.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeInternalError   = "internal_error"
	ErrorCodePolicyBlocked   = "policy_blocked"
)

// RawMessage is used for parsing incoming messages before type dispatch.
type RawMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"-"`
}
