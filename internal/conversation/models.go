package conversation

import "time"

// Domain models for the gateway's conversation graph. The live ConversationState
// is owned by a single session; the ConversationRecord is the durable projection
// written through the storage package.

type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Issue is a single finding attached to a message. Produced by the local
// analyzer or by the remote service; never mutated after creation.
type Issue struct {
	Kind        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Message is one turn entry. Immutable once created; ordering within a
// conversation is insertion order and is significant.
type Message struct {
	ID               string
	Content          string
	Origin           Origin
	IsCode           bool
	Issues           []Issue
	SuggestedActions []string
}

// ConversationState is the live, in-memory state of the active session.
// Single-writer: the caller serializes turns per conversation.
type ConversationState struct {
	ConversationID string // empty until a turn assigns one
	Messages       []Message
	IsLoading      bool
	LastError      string
	IsConnected    bool
}

// NewState returns the empty state a session starts with.
func NewState() ConversationState {
	return ConversationState{IsConnected: true}
}

// PersistedMessage is the durable projection of a Message. Per-message issues
// and suggested actions are intentionally not part of the projection.
type PersistedMessage struct {
	Role    Origin `json:"role"`
	Content string `json:"content"`
	IsCode  bool   `json:"is_code"`
}

// ConversationRecord is the durable projection of a conversation. A record
// exists only once the conversation has a non-empty id.
type ConversationRecord struct {
	ID                  string
	OriginalCodeSnippet string
	DetectedIssues      []Issue
	Messages            []PersistedMessage
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
