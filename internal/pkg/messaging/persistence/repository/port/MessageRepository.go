package repository

import (
	"context"

	messaging "servihub/internal/pkg/messaging/application/domain"
)

// MessageRepository defines the durable-store operations for direct messaging.
// The store is strongly consistent and authoritative for unread counts; every
// method is the single source of truth the in-memory aggregator reconciles
// toward.
type MessageRepository interface {
	// SaveMessage persists m and returns the store-generated id.
	SaveMessage(ctx context.Context, m messaging.Message) (string, error)

	// ListBetween returns messages exchanged between userID and partnerID,
	// newest first, honoring limit/offset.
	ListBetween(ctx context.Context, userID, partnerID string, limit, offset int) ([]messaging.Message, error)

	// ListConversations returns one entry per partner userID has exchanged
	// messages with, carrying the authoritative unread count and last message.
	ListConversations(ctx context.Context, userID string) ([]messaging.Conversation, error)

	// MarkRead marks every unseen message from partnerID to userID as seen.
	// Idempotent; safe to retry.
	MarkRead(ctx context.Context, userID, partnerID string) error
}
