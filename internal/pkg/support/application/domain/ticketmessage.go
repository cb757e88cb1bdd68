package support

import (
	"strings"
	"time"

	"servihub/internal/pkg/identity"
)

// TicketMessage is an append-only entry in a support ticket's thread.
type TicketMessage struct {
	ID         string        `db:"id"`
	TicketID   string        `db:"ticket_id"`
	SenderID   string        `db:"sender_id"`
	SenderRole identity.Role `db:"sender_role"`
	Text       string        `db:"body"`
	CreatedAt  time.Time     `db:"created_at"`
}

// NewTicketMessage validates and normalizes a support message before the
// state-machine guards run against the durable ticket record.
func NewTicketMessage(ticketID, senderID string, senderRole identity.Role, text string) (*TicketMessage, error) {
	if ticketID == "" {
		return nil, ErrTicketNotFound
	}
	if senderID == "" {
		return nil, ErrMissingSender
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	return &TicketMessage{
		TicketID:   ticketID,
		SenderID:   senderID,
		SenderRole: senderRole,
		Text:       trimmed,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
