package usecase

import (
	"time"

	messaging "servihub/internal/pkg/messaging/application/domain"
)

// Outbound event names for the direct-messaging domain.
const (
	EventMessageReceived     = "message_received"
	EventConversationUpdated = "conversation_updated"
	EventTypingIndicator     = "typing_indicator"
)

// Emitter is the fan-out seam the aggregator needs. The realtime Relay
// satisfies it; tests substitute a recorder.
type Emitter interface {
	Emit(userID string, event string, data interface{}) int
}

// MessageEvent is the wire payload of a message_received event.
type MessageEvent struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationEvent is the wire payload of a conversation_updated event.
type ConversationEvent struct {
	PartnerID   string `json:"partner_id"`
	UnreadCount int    `json:"unread_count"`
}

// TypingEvent is the wire payload of a typing_indicator event. Never persisted;
// the client re-arms its own short expiry timer on every arrival, so duplicate
// or late signals are harmless.
type TypingEvent struct {
	SenderID string `json:"sender_id"`
}

func toMessageEvent(m messaging.Message) MessageEvent {
	return MessageEvent{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}
