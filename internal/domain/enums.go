// Package domain defines the conversation state models shared by the store and its transports.
package domain

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Exchange titles, chosen from the sender of the first message.
const (
	TitleAIGreeting  = "AI Greeting"
	TitleUserInquiry = "User Inquiry"
)

// Defaults applied by the store.
const (
	DefaultComponentType  = "contextual_input"
	DefaultSideboardTitle = "Information"
	SideboardHistoryLimit = 10
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeConversationIDSet         ChangeKind = "conversation_id_set"
	ChangeMessageAdded              ChangeKind = "message_added"
	ChangeActiveComponentSet        ChangeKind = "active_component_set"
	ChangeActiveComponentCleared    ChangeKind = "active_component_cleared"
	ChangeSideboardUpdated          ChangeKind = "sideboard_updated"
	ChangeActiveSideboardContentSet ChangeKind = "active_sideboard_content_set"
	ChangeConversationCleared       ChangeKind = "conversation_cleared"
)

// Field names an observable part of the conversation state.
type Field string

const (
	FieldConversationID         Field = "conversation_id"
	FieldMessages               Field = "messages"
	FieldExchanges              Field = "exchanges"
	FieldActiveComponent        Field = "active_component"
	FieldActiveSideboardContent Field = "active_sideboard_content"
	FieldSideboardHistory       Field = "sideboard_history"
)
