package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cacheport "servihub/internal/infrastructure/cache/port"
	messaging "servihub/internal/pkg/messaging/application/domain"
	repository "servihub/internal/pkg/messaging/persistence/repository/port"
)

const conversationSnapshotTTL = 15 * time.Second

// ListConversationsUseCase serves the conversation list with authoritative
// unread counts. A short-lived redis snapshot shields the store from reconnect
// storms; writes invalidate it, and every store read reconciles the
// aggregator's in-memory cache.
type ListConversationsUseCase struct {
	Repo  repository.MessageRepository
	Cache cacheport.Cache
	Agg   *ConversationAggregator
	Log   zerolog.Logger
}

func NewListConversationsUseCase(repo repository.MessageRepository, cache cacheport.Cache, agg *ConversationAggregator, log zerolog.Logger) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Cache: cache, Agg: agg, Log: log}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	if userID == "" {
		return nil, messaging.ErrMissingParties
	}

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, conversationSnapshotKey(userID)); err == nil {
			var convs []messaging.Conversation
			if err := json.Unmarshal([]byte(raw), &convs); err == nil {
				return convs, nil
			}
		} else if err != cacheport.ErrMiss {
			uc.Log.Warn().Err(err).Msg("conversations: snapshot read failed")
		}
	}

	convs, err := uc.Repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Durable values win: overwrite the in-memory cache with the fresh read.
	uc.Agg.Reconcile(userID, convs)

	if uc.Cache != nil {
		if raw, err := json.Marshal(convs); err == nil {
			if err := uc.Cache.Set(ctx, conversationSnapshotKey(userID), string(raw), conversationSnapshotTTL); err != nil {
				uc.Log.Warn().Err(err).Msg("conversations: snapshot write failed")
			}
		}
	}

	return convs, nil
}
