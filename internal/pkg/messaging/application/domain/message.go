package messaging

import (
	"strings"
	"time"
)

// Message is an immutable direct message between two marketplace users.
// The durable store owns it; the aggregator only references it.
type Message struct {
	ID         string    `db:"id"`
	SenderID   string    `db:"sender_id"`
	ReceiverID string    `db:"receiver_id"`
	Text       string    `db:"body"`
	Seen       bool      `db:"seen"`
	CreatedAt  time.Time `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
// A sender messaging themself is rejected, matching the invariant that
// senderId != receiverId always holds for a persisted message.
func NewMessage(senderID, receiverID, text string) (*Message, error) {
	if senderID == "" || receiverID == "" {
		return nil, ErrMissingParties
	}
	if senderID == receiverID {
		return nil, ErrSelfMessage
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       trimmed,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
