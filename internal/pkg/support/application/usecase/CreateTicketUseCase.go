package usecase

import (
	"context"
	"errors"
	"fmt"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// CreateTicketUseCase opens a support session for a non-admin user.
//
// Creation is idempotent: if the requester already has a ticket in open or
// assigned state, that ticket is returned instead of erroring, which tolerates
// duplicate client-side creation attempts. Only a genuinely fresh ticket is
// broadcast to the on-duty admins.
type CreateTicketUseCase struct {
	Repo repository.TicketRepository
	Emit Emitter
}

func NewCreateTicketUseCase(repo repository.TicketRepository, emit Emitter) *CreateTicketUseCase {
	return &CreateTicketUseCase{Repo: repo, Emit: emit}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, requesterID string, role identity.Role) (*support.Ticket, error) {
	if requesterID == "" {
		return nil, support.ErrMissingSender
	}
	if role.IsAdmin() {
		return nil, support.ErrAdminRequester
	}

	existing, err := uc.Repo.FindActiveByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return existing, nil
	}

	t, err := uc.Repo.CreateTicket(ctx, requesterID)
	if errors.Is(err, support.ErrActiveTicketExists) {
		// Lost a concurrent create for the same requester: the store's unique
		// guard on active tickets fired, so hand back the winner's ticket.
		existing, ferr := uc.Repo.FindActiveByRequester(ctx, requesterID)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, ferr)
		}
		if existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Emit.EmitToRole(identity.RoleAdmin, EventTicketOpened, toTicketEvent(*t))

	return t, nil
}
