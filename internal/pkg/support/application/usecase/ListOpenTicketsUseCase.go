package usecase

import (
	"context"
	"fmt"

	support "servihub/internal/pkg/support/application/domain"
	repository "servihub/internal/pkg/support/persistence/repository/port"
)

// ListOpenTicketsUseCase returns every ticket awaiting a claim, oldest first.
// The admin-only policy is enforced at the presentation layer; claim-race
// losers call this to refresh their view.
type ListOpenTicketsUseCase struct {
	Repo repository.TicketRepository
}

func NewListOpenTicketsUseCase(repo repository.TicketRepository) *ListOpenTicketsUseCase {
	return &ListOpenTicketsUseCase{Repo: repo}
}

func (uc *ListOpenTicketsUseCase) Execute(ctx context.Context) ([]support.Ticket, error) {
	tickets, err := uc.Repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return tickets, nil
}
