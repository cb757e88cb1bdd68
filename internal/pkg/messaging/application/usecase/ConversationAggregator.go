package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	cacheport "servihub/internal/infrastructure/cache/port"
	qport "servihub/internal/infrastructure/queue/port"
	messaging "servihub/internal/pkg/messaging/application/domain"
	"servihub/internal/pkg/messaging/application/task"
	repository "servihub/internal/pkg/messaging/persistence/repository/port"
)

// ConversationAggregator owns the process-scoped derived state for direct
// messaging: per-user conversation entries (partner, last message, unread
// count) and the per-user active-conversation marker. It is the only component
// that mutates durable unread state, always store-first: if the persisting
// write fails, no cache mutation and no emit happens.
//
// The cache is never authoritative. Whenever a fresh read from the durable
// store disagrees with it, Reconcile overwrites the cached entries wholesale.
type ConversationAggregator struct {
	repo  repository.MessageRepository
	queue qport.Client
	cache cacheport.Cache
	emit  Emitter
	log   zerolog.Logger

	mu     sync.Mutex
	convs  map[string]map[string]*messaging.Conversation // userID -> partnerID -> entry
	active map[string]string                             // userID -> partnerID currently viewed
}

// NewConversationAggregator wires the aggregator. queue and cache may be nil in
// tests; the durable repo and emitter are required.
func NewConversationAggregator(repo repository.MessageRepository, queue qport.Client, cache cacheport.Cache, emit Emitter, log zerolog.Logger) *ConversationAggregator {
	return &ConversationAggregator{
		repo:   repo,
		queue:  queue,
		cache:  cache,
		emit:   emit,
		log:    log,
		convs:  make(map[string]map[string]*messaging.Conversation),
		active: make(map[string]string),
	}
}

// OnMessageSent validates and persists the message, updates both parties'
// cached conversation entries, and fans the message out. The sender receives
// its own echo so its other devices stay in sync.
//
// The receiver's unread count is bumped unless the receiver is currently
// viewing this exact conversation, in which case the message is persisted
// already seen and the count stays at zero.
func (a *ConversationAggregator) OnMessageSent(ctx context.Context, senderID, receiverID, text string) (*messaging.Message, error) {
	m, err := messaging.NewMessage(senderID, receiverID, text)
	if err != nil {
		return nil, err
	}

	// The marker is sampled once, before the write; a receiver opening the
	// conversation mid-flight is caught by the mark-read task and by the next
	// reconciliation against the store.
	a.mu.Lock()
	viewing := a.active[receiverID] == senderID
	a.mu.Unlock()
	m.Seen = viewing

	id, err := a.repo.SaveMessage(ctx, *m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	m.ID = id

	a.mu.Lock()
	recv := a.entryLocked(receiverID, senderID)
	recv.LastMessage = m
	if !viewing {
		recv.UnreadCount++
	}
	recvUnread := recv.UnreadCount

	sent := a.entryLocked(senderID, receiverID)
	sent.LastMessage = m
	sentUnread := sent.UnreadCount
	a.mu.Unlock()

	a.invalidateSnapshots(ctx, senderID, receiverID)

	event := toMessageEvent(*m)
	a.emit.Emit(receiverID, EventMessageReceived, event)
	a.emit.Emit(senderID, EventMessageReceived, event)
	a.emit.Emit(receiverID, EventConversationUpdated, ConversationEvent{PartnerID: senderID, UnreadCount: recvUnread})
	a.emit.Emit(senderID, EventConversationUpdated, ConversationEvent{PartnerID: receiverID, UnreadCount: sentUnread})

	return m, nil
}

// MarkConversationRead zeroes the cached unread count for the pair and drives
// the durable read-mark through the queue, without touching the
// active-conversation marker. The queue write is the persisting step: if it
// cannot be enqueued, nothing else happens and the caller retries. This is the
// path for read-API history fetches, where the caller may hold no live
// connection and nothing would ever clear a marker.
func (a *ConversationAggregator) MarkConversationRead(ctx context.Context, userID, partnerID string) error {
	if userID == "" || partnerID == "" {
		return messaging.ErrMissingParties
	}

	if err := a.enqueueMarkRead(ctx, userID, partnerID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	a.mu.Lock()
	a.entryLocked(userID, partnerID).UnreadCount = 0
	a.mu.Unlock()

	a.invalidateSnapshots(ctx, userID)

	a.emit.Emit(userID, EventConversationUpdated, ConversationEvent{PartnerID: partnerID, UnreadCount: 0})
	return nil
}

// OnConversationOpened records that userID is now viewing the conversation with
// partnerID, on top of marking it read. Only socket sessions call this: the
// marker suppresses unread counting until close_conversation or disconnect
// clears it, so it must never be set for a caller with no live connection.
func (a *ConversationAggregator) OnConversationOpened(ctx context.Context, userID, partnerID string) error {
	if err := a.MarkConversationRead(ctx, userID, partnerID); err != nil {
		return err
	}

	a.mu.Lock()
	a.active[userID] = partnerID
	a.mu.Unlock()
	return nil
}

// OnConversationClosed clears the active-conversation marker so subsequent
// messages increment the unread count again.
func (a *ConversationAggregator) OnConversationClosed(userID string) {
	a.mu.Lock()
	delete(a.active, userID)
	a.mu.Unlock()
}

// Reconcile overwrites userID's cached entries with a fresh authoritative read
// from the durable store. Overwrite, never merge.
func (a *ConversationAggregator) Reconcile(userID string, authoritative []messaging.Conversation) {
	entries := make(map[string]*messaging.Conversation, len(authoritative))
	for i := range authoritative {
		c := authoritative[i]
		entries[c.PartnerID] = &c
	}

	a.mu.Lock()
	a.convs[userID] = entries
	a.mu.Unlock()
}

// Typing relays an ephemeral typing signal to the receiver's connections.
// Nothing is persisted and delivery is best-effort.
func (a *ConversationAggregator) Typing(senderID, receiverID string) {
	if senderID == "" || receiverID == "" || senderID == receiverID {
		return
	}
	a.emit.Emit(receiverID, EventTypingIndicator, TypingEvent{SenderID: senderID})
}

func (a *ConversationAggregator) enqueueMarkRead(ctx context.Context, userID, partnerID string) error {
	payload, err := json.Marshal(task.MarkReadPayload{UserID: userID, PartnerID: partnerID})
	if err != nil {
		return err
	}
	if a.queue == nil {
		// No queue wired (tests, degraded mode): mark read synchronously.
		return a.repo.MarkRead(ctx, userID, partnerID)
	}
	_, err = a.queue.Enqueue(ctx, qport.Task{Type: task.MarkReadTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:    "messaging",
		MaxRetry: 10,
	})
	return err
}

// invalidateSnapshots drops the cached conversation-list snapshots for the
// given users so the next list read hits the store.
func (a *ConversationAggregator) invalidateSnapshots(ctx context.Context, userIDs ...string) {
	if a.cache == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, conversationSnapshotKey(id))
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := a.cache.Del(cctx, keys...); err != nil {
		a.log.Warn().Err(err).Msg("aggregator: snapshot invalidation failed")
	}
}

// entryLocked returns the cached entry for (userID, partnerID), creating it if
// absent. Caller holds a.mu.
func (a *ConversationAggregator) entryLocked(userID, partnerID string) *messaging.Conversation {
	byPartner := a.convs[userID]
	if byPartner == nil {
		byPartner = make(map[string]*messaging.Conversation)
		a.convs[userID] = byPartner
	}
	entry := byPartner[partnerID]
	if entry == nil {
		entry = &messaging.Conversation{PartnerID: partnerID}
		byPartner[partnerID] = entry
	}
	return entry
}

func conversationSnapshotKey(userID string) string {
	return "conversations:" + userID
}
