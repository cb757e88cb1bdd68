package usecase

import (
	"context"
	"fmt"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// CloseTicketUseCase terminates an assigned ticket. Only the admin the ticket
// is assigned to may close it; closed is terminal and further messages fail
// with a terminal-state error.
type CloseTicketUseCase struct {
	Repo repository.TicketRepository
	Emit Emitter
}

func NewCloseTicketUseCase(repo repository.TicketRepository, emit Emitter) *CloseTicketUseCase {
	return &CloseTicketUseCase{Repo: repo, Emit: emit}
}

func (uc *CloseTicketUseCase) Execute(ctx context.Context, ticketID, adminID string) (*support.Ticket, error) {
	if ticketID == "" || adminID == "" {
		return nil, support.ErrTicketNotFound
	}

	closed, err := uc.Repo.Close(ctx, ticketID, adminID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !closed {
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
		return nil, support.ErrNotAssigned
	}

	t, err := uc.Repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	event := toTicketEvent(*t)
	uc.Emit.Emit(t.RequesterID, EventTicketClosed, event)
	uc.Emit.EmitToRole(identity.RoleAdmin, EventTicketClosed, event)

	return t, nil
}
