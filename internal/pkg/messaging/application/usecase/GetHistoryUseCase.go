package usecase

import (
	"context"
	"fmt"

	messaging "servihub/internal/pkg/messaging/application/domain"
	repository "servihub/internal/pkg/messaging/persistence/repository/port"
)

// GetHistoryInput carries parameters to fetch message history with a partner.
type GetHistoryInput struct {
	UserID    string
	PartnerID string
	Limit     int
	Offset    int
}

// GetHistoryUseCase fetches the message history between the user and a partner.
// Fetching history is the trigger point for resetting the unread count, no
// matter how many connections the user has. It does not mark the conversation
// as actively viewed: only a socket session does that, because only a socket
// session has a disconnect to clear the marker again.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
	Agg  *ConversationAggregator
}

func NewGetHistoryUseCase(repo repository.MessageRepository, agg *ConversationAggregator) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo, Agg: agg}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]messaging.Message, error) {
	if in.UserID == "" || in.PartnerID == "" {
		return nil, messaging.ErrMissingParties
	}

	msgs, err := uc.Repo.ListBetween(ctx, in.UserID, in.PartnerID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Agg.MarkConversationRead(ctx, in.UserID, in.PartnerID); err != nil {
		return nil, err
	}

	return msgs, nil
}
