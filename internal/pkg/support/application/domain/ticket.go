package support

import (
	"errors"
	"time"
)

// Status is the support-ticket lifecycle state. The only legal path is
// open -> assigned -> closed; closed is terminal and there is no reopen
// transition. A new support session means a new ticket.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
	StatusClosed   Status = "closed"
)

// Ticket is a support session raised by a non-admin user. AssignedAdminID is
// non-nil only after a successful claim, and at most one admin ever holds it.
type Ticket struct {
	ID              string     `db:"id"`
	RequesterID     string     `db:"requester_id"`
	Status          Status     `db:"status"`
	AssignedAdminID *string    `db:"assigned_admin_id"`
	CreatedAt       time.Time  `db:"created_at"`
	ClosedAt        *time.Time `db:"closed_at"`
}

// Active reports whether the ticket still accepts traffic (not closed).
func (t *Ticket) Active() bool {
	return t != nil && t.Status != StatusClosed
}

// Domain-level errors for the ticket state machine. Each maps to a typed
// rejection for the originating connection; none of them is ever broadcast.
var (
	ErrTicketNotFound     = errors.New("support: ticket not found")
	ErrForbidden          = errors.New("support: not a participant of this ticket")
	ErrAlreadyAssigned    = errors.New("support: ticket already assigned")
	ErrTicketClosed       = errors.New("support: ticket is closed")
	ErrNotAssigned        = errors.New("support: ticket is not assigned to this admin")
	ErrUnclaimedReply     = errors.New("support: admin must claim the ticket before replying")
	ErrAdminRequester     = errors.New("support: admins cannot open support tickets")
	ErrActiveTicketExists = errors.New("support: requester already has an active ticket")
	ErrEmptyMessage       = errors.New("support: message text is empty")
	ErrMissingSender      = errors.New("support: sender id is required")
)
