package usecase

import (
	"context"
	"fmt"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// ClaimTicketUseCase moves a ticket from open to assigned for exactly one
// admin. The arbitration is the repository's compare-and-set against the
// durable record: when two admins race, one write lands and every other
// caller gets support.ErrAlreadyAssigned and must refresh its open-ticket
// list.
type ClaimTicketUseCase struct {
	Repo repository.TicketRepository
	Emit Emitter
}

func NewClaimTicketUseCase(repo repository.TicketRepository, emit Emitter) *ClaimTicketUseCase {
	return &ClaimTicketUseCase{Repo: repo, Emit: emit}
}

func (uc *ClaimTicketUseCase) Execute(ctx context.Context, ticketID, adminID string) (*support.Ticket, error) {
	if ticketID == "" || adminID == "" {
		return nil, support.ErrTicketNotFound
	}

	claimed, err := uc.Repo.Claim(ctx, ticketID, adminID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !claimed {
		// Guard failed: distinguish the rejection for the caller.
		t, err := uc.Repo.GetTicket(ctx, ticketID)
		if err == support.ErrTicketNotFound {
			return nil, err
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if t.Status == support.StatusClosed {
			return nil, support.ErrTicketClosed
		}
		return nil, support.ErrAlreadyAssigned
	}

	t, err := uc.Repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The requester learns who took the ticket; every admin sees it leave the
	// open list (including the winner's other devices).
	event := toTicketEvent(*t)
	uc.Emit.Emit(t.RequesterID, EventTicketAssigned, event)
	uc.Emit.EmitToRole(identity.RoleAdmin, EventTicketAssigned, event)

	return t, nil
}
