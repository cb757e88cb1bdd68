package usecase

import (
	"context"
	"fmt"

	"servihub/internal/pkg/identity"
	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// GetTicketMessagesInput carries parameters to fetch a ticket's thread.
type GetTicketMessagesInput struct {
	TicketID string
	UserID   string
	Role     identity.Role
	Limit    int
	Offset   int
}

// GetTicketMessagesUseCase returns the ticket thread for its requester or any
// admin.
type GetTicketMessagesUseCase struct {
	Repo repository.TicketRepository
}

func NewGetTicketMessagesUseCase(repo repository.TicketRepository) *GetTicketMessagesUseCase {
	return &GetTicketMessagesUseCase{Repo: repo}
}

func (uc *GetTicketMessagesUseCase) Execute(ctx context.Context, in GetTicketMessagesInput) ([]support.TicketMessage, error) {
	if in.TicketID == "" {
		return nil, support.ErrTicketNotFound
	}

	t, err := uc.Repo.GetTicket(ctx, in.TicketID)
	if err == support.ErrTicketNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !in.Role.IsAdmin() && t.RequesterID != in.UserID {
		return nil, support.ErrForbidden
	}

	msgs, err := uc.Repo.ListMessages(ctx, in.TicketID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
