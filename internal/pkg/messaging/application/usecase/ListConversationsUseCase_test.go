package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheport "servihub/internal/infrastructure/cache/port"
	messaging "servihub/internal/pkg/messaging/application/domain"
)

// fakeCache is an in-memory port.Cache. TTLs are recorded but never enforced;
// tests assert invalidation explicitly.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
	dels    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, k := range keys {
		if _, ok := f.entries[k]; ok {
			delete(f.entries, k)
			removed++
		}
	}
	f.dels++
	return removed, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func TestListConversationsMissReadsStoreAndReconciles(t *testing.T) {
	repo := &fakeMessageRepo{listed: []messaging.Conversation{
		{PartnerID: "alice", UnreadCount: 4},
	}}
	cache := newFakeCache()
	emit := &recordingEmitter{}
	agg := NewConversationAggregator(repo, nil, cache, emit, zerolog.Nop())
	uc := NewListConversationsUseCase(repo, cache, agg, zerolog.Nop())

	convs, err := uc.Execute(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 4, convs[0].UnreadCount)

	// The fresh read overwrote the in-memory entries and filled the snapshot.
	agg.mu.Lock()
	assert.Equal(t, 4, agg.convs["bob"]["alice"].UnreadCount)
	agg.mu.Unlock()
	assert.Equal(t, 1, cache.sets)
}

func TestListConversationsServesSnapshotOnHit(t *testing.T) {
	repo := &fakeMessageRepo{listed: []messaging.Conversation{
		{PartnerID: "alice", UnreadCount: 1},
	}}
	cache := newFakeCache()
	emit := &recordingEmitter{}
	agg := NewConversationAggregator(repo, nil, cache, emit, zerolog.Nop())
	uc := NewListConversationsUseCase(repo, cache, agg, zerolog.Nop())

	_, err := uc.Execute(context.Background(), "bob")
	require.NoError(t, err)

	// Second read within the TTL comes from the snapshot, not a second store read.
	convs, err := uc.Execute(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 1, cache.sets)
}

func TestListConversationsSnapshotInvalidatedByWrite(t *testing.T) {
	repo := &fakeMessageRepo{}
	cache := newFakeCache()
	emit := &recordingEmitter{}
	agg := NewConversationAggregator(repo, nil, cache, emit, zerolog.Nop())
	uc := NewListConversationsUseCase(repo, cache, agg, zerolog.Nop())

	_, err := uc.Execute(context.Background(), "bob")
	require.NoError(t, err)

	_, err = agg.OnMessageSent(context.Background(), "alice", "bob", "stale now")
	require.NoError(t, err)

	cache.mu.Lock()
	_, hit := cache.entries[conversationSnapshotKey("bob")]
	cache.mu.Unlock()
	assert.False(t, hit)
}

func TestListConversationsRejectsEmptyUser(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)
	uc := NewListConversationsUseCase(repo, nil, agg, zerolog.Nop())

	_, err := uc.Execute(context.Background(), "")
	assert.ErrorIs(t, err, messaging.ErrMissingParties)
}

func TestGetHistoryResetsUnreadCount(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)
	historyUC := NewGetHistoryUseCase(repo, agg)

	_, err := agg.OnMessageSent(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)

	_, err = historyUC.Execute(context.Background(), GetHistoryInput{UserID: "bob", PartnerID: "alice", Limit: 50})
	require.NoError(t, err)

	// Fetching history is the read trigger: the unread count dropped to zero
	// and the durable read-mark ran.
	require.Len(t, repo.marked, 1)
	assert.Equal(t, [2]string{"bob", "alice"}, repo.marked[0])

	updates := emit.byEvent(EventConversationUpdated)
	last := updates[len(updates)-1]
	assert.Equal(t, "bob", last.UserID)
	assert.Equal(t, ConversationEvent{PartnerID: "alice", UnreadCount: 0}, last.Data)
}

func TestGetHistoryDoesNotMarkConversationActive(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)
	historyUC := NewGetHistoryUseCase(repo, agg)

	// Bob reads the history over HTTP without any live socket session.
	_, err := historyUC.Execute(context.Background(), GetHistoryInput{UserID: "bob", PartnerID: "alice", Limit: 50})
	require.NoError(t, err)

	agg.mu.Lock()
	_, active := agg.active["bob"]
	agg.mu.Unlock()
	assert.False(t, active)

	// Later messages must count again: persisted unseen, unread climbs to 2.
	for i := 0; i < 2; i++ {
		m, err := agg.OnMessageSent(context.Background(), "alice", "bob", "still there?")
		require.NoError(t, err)
		assert.False(t, m.Seen)
	}
	require.Len(t, repo.saved, 2)
	assert.False(t, repo.saved[0].Seen)
	assert.False(t, repo.saved[1].Seen)

	updates := emit.byEvent(EventConversationUpdated)
	var bobUnread int
	for _, u := range updates {
		if u.UserID == "bob" {
			bobUnread = u.Data.(ConversationEvent).UnreadCount
		}
	}
	assert.Equal(t, 2, bobUnread)
}
