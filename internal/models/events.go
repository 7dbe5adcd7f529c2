package models

import (
	"time"
)

type MessageEventType string

const (
	EventMessageCreated    MessageEventType = "message_created"
	EventMessageDeleted    MessageEventType = "message_deleted"
	EventMessageResolved   MessageEventType = "message_resolved"
	EventMessageUnresolved MessageEventType = "message_unresolved"
	EventMessageLiked      MessageEventType = "message_liked"
	EventMessageUnliked    MessageEventType = "message_unliked"
	EventTagAdded          MessageEventType = "tag_added"
	EventTagUpdated        MessageEventType = "tag_updated"
	EventReactionAdded     MessageEventType = "reaction_added"
	EventReactionRemoved   MessageEventType = "reaction_removed"
	EventVoteAdded         MessageEventType = "vote_added"
	EventVoteRemoved       MessageEventType = "vote_removed"
)

// MessageEvent is published after the store accepted a mutation. Idempotent
// mutations that changed nothing are announced too; consumers treat events
// as notifications to reconcile, not as state deltas.
type MessageEvent struct {
	Type           MessageEventType `json:"type"`
	MessageID      string           `json:"message_id"`
	ConversationID string           `json:"conversation_id"`
	UserID         string           `json:"user_id,omitempty"`
	Data           map[string]any   `json:"data,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

func NewMessageEvent(t MessageEventType, msg *Message, userID string, data map[string]any) MessageEvent {
	return MessageEvent{
		Type:           t,
		MessageID:      msg.ID.String(),
		ConversationID: msg.ConversationID,
		UserID:         userID,
		Data:           data,
		CreatedAt:      time.Now(),
	}
}

// Key partitions events per conversation so consumers see them in order.
func (e MessageEvent) Key() string {
	return e.ConversationID
}
