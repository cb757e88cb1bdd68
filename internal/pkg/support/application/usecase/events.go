package usecase

import (
	"time"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
)

// Outbound event names for the support-ticket domain.
const (
	EventTicketOpened           = "ticket_opened"
	EventTicketAssigned         = "ticket_assigned"
	EventTicketClosed           = "ticket_closed"
	EventTicketClaimRejected    = "ticket_claim_rejected"
	EventSupportMessageReceived = "support_message_received"
)

// Emitter is the fan-out seam the ticket use cases need. The realtime Relay
// satisfies it; tests substitute a recorder.
type Emitter interface {
	Emit(userID string, event string, data interface{}) int
	EmitToRole(role identity.Role, event string, data interface{}) int
}

// TicketEvent is the wire payload for ticket lifecycle events.
type TicketEvent struct {
	ID              string         `json:"id"`
	RequesterID     string         `json:"requester_id"`
	Status          support.Status `json:"status"`
	AssignedAdminID *string        `json:"assigned_admin_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ClosedAt        *time.Time     `json:"closed_at,omitempty"`
}

// TicketMessageEvent is the wire payload of a support_message_received event.
type TicketMessageEvent struct {
	ID         string        `json:"id"`
	TicketID   string        `json:"ticket_id"`
	SenderID   string        `json:"sender_id"`
	SenderRole identity.Role `json:"sender_role"`
	Text       string        `json:"text"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ClaimRejectedEvent is the typed rejection delivered only to the losing
// admin's originating connection.
type ClaimRejectedEvent struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

func toTicketEvent(t support.Ticket) TicketEvent {
	return TicketEvent{
		ID:              t.ID,
		RequesterID:     t.RequesterID,
		Status:          t.Status,
		AssignedAdminID: t.AssignedAdminID,
		CreatedAt:       t.CreatedAt,
		ClosedAt:        t.ClosedAt,
	}
}

func toTicketMessageEvent(m support.TicketMessage) TicketMessageEvent {
	return TicketMessageEvent{
		ID:         m.ID,
		TicketID:   m.TicketID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}
