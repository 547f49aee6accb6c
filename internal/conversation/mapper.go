package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Mapping between the live ConversationState and its durable record. Both
// directions are pure functions of their input (plus fresh timestamps on save).

// ToRecord builds the durable projection of state. It returns ok=false when
// the conversation has no id yet: a turn that never acquired one leaves
// nothing to persist.
//
// Per-message issues and suggested actions are not part of the message
// projection; only the first detected issue list survives, on the record
// itself. ToState does not rebuild them.
func ToRecord(state ConversationState) (ConversationRecord, bool) {
	if state.ConversationID == "" {
		return ConversationRecord{}, false
	}

	now := time.Now()
	record := ConversationRecord{
		ID:        state.ConversationID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, msg := range state.Messages {
		if record.OriginalCodeSnippet == "" && msg.Origin == OriginUser && msg.IsCode {
			record.OriginalCodeSnippet = msg.Content
		}
		if record.DetectedIssues == nil && msg.Origin != OriginUser && len(msg.Issues) > 0 {
			record.DetectedIssues = msg.Issues
		}
		record.Messages = append(record.Messages, PersistedMessage{
			Role:    msg.Origin,
			Content: msg.Content,
			IsCode:  msg.IsCode,
		})
	}

	return record, true
}

// ToState reconstructs the message sequence from a record, in original order.
// Issues and suggested actions are not reconstructed.
func ToState(record ConversationRecord) []Message {
	messages := make([]Message, 0, len(record.Messages))
	for _, pm := range record.Messages {
		messages = append(messages, Message{
			ID:      uuid.NewString(),
			Content: pm.Content,
			Origin:  pm.Role,
			IsCode:  pm.IsCode,
		})
	}
	return messages
}
