package repository

import (
	"context"

	support "servihub/internal/pkg/support/application/domain"
)

// TicketRepository defines the durable-store operations for support tickets.
// Transition guards are evaluated against the store's current record at call
// time; Claim and Close are conditional writes whose boolean result is the
// arbitration, never relay delivery order.
type TicketRepository interface {
	// CreateTicket inserts a new open ticket for the requester and returns it.
	// Returns support.ErrActiveTicketExists when the requester already holds an
	// open or assigned ticket, so concurrent creates cannot mint duplicates.
	CreateTicket(ctx context.Context, requesterID string) (*support.Ticket, error)

	// GetTicket returns the ticket or support.ErrTicketNotFound.
	GetTicket(ctx context.Context, id string) (*support.Ticket, error)

	// FindActiveByRequester returns the requester's ticket in open or assigned
	// state, or (nil, nil) when there is none.
	FindActiveByRequester(ctx context.Context, requesterID string) (*support.Ticket, error)

	// Claim atomically moves the ticket from open to assigned for adminID.
	// It returns true only for the single winner; a false result with nil error
	// means the guard failed (already assigned or closed).
	Claim(ctx context.Context, ticketID, adminID string) (bool, error)

	// Close atomically moves the ticket from assigned to closed, but only for
	// the admin it is assigned to. False with nil error means the guard failed.
	Close(ctx context.Context, ticketID, adminID string) (bool, error)

	// SaveMessage appends a message to the ticket thread and returns its id.
	SaveMessage(ctx context.Context, m support.TicketMessage) (string, error)

	// ListOpen returns all tickets currently in open state, oldest first.
	ListOpen(ctx context.Context) ([]support.Ticket, error)

	// ListMessages returns the ticket's thread, oldest first.
	ListMessages(ctx context.Context, ticketID string, limit, offset int) ([]support.TicketMessage, error)
}
