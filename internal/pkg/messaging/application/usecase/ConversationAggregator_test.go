package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messaging "servihub/internal/pkg/messaging/application/domain"
)

// fakeMessageRepo is an in-memory stand-in for the durable store. saveErr makes
// every write fail so store-first behavior can be asserted.
type fakeMessageRepo struct {
	mu      sync.Mutex
	saved   []messaging.Message
	marked  [][2]string // (userID, partnerID) pairs passed to MarkRead
	saveErr error
	markErr error
	nextID  int
	listed  []messaging.Conversation
}

func (f *fakeMessageRepo) SaveMessage(_ context.Context, m messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.nextID++
	m.ID = fmt.Sprintf("m-%d", f.nextID)
	f.saved = append(f.saved, m)
	return m.ID, nil
}

func (f *fakeMessageRepo) ListBetween(_ context.Context, _, _ string, _, _ int) ([]messaging.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messaging.Message(nil), f.saved...), nil
}

func (f *fakeMessageRepo) ListConversations(_ context.Context, _ string) ([]messaging.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messaging.Conversation(nil), f.listed...), nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, userID, partnerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, [2]string{userID, partnerID})
	return nil
}

type emitted struct {
	UserID string
	Event  string
	Data   interface{}
}

// recordingEmitter captures every emit; thread-safe so concurrent paths can use it.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) Emit(userID string, event string, data interface{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{UserID: userID, Event: event, Data: data})
	return 1
}

func (r *recordingEmitter) byEvent(event string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingEmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTestAggregator(repo *fakeMessageRepo, emit *recordingEmitter) *ConversationAggregator {
	return NewConversationAggregator(repo, nil, nil, emit, zerolog.Nop())
}

func TestOnMessageSentIncrementsReceiverUnread(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	m, err := agg.OnMessageSent(context.Background(), "alice", "bob", "hi bob")
	require.NoError(t, err)
	assert.Equal(t, "m-1", m.ID)
	assert.False(t, m.Seen)

	// Both parties get the message echo.
	received := emit.byEvent(EventMessageReceived)
	require.Len(t, received, 2)
	assert.Equal(t, "bob", received[0].UserID)
	assert.Equal(t, "alice", received[1].UserID)

	// Bob's entry carries unread 1, Alice's stays at 0.
	updates := emit.byEvent(EventConversationUpdated)
	require.Len(t, updates, 2)
	assert.Equal(t, "bob", updates[0].UserID)
	assert.Equal(t, ConversationEvent{PartnerID: "alice", UnreadCount: 1}, updates[0].Data)
	assert.Equal(t, "alice", updates[1].UserID)
	assert.Equal(t, ConversationEvent{PartnerID: "bob", UnreadCount: 0}, updates[1].Data)
}

func TestOnMessageSentUnreadAccumulatesWhileOffline(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	for i := 0; i < 3; i++ {
		_, err := agg.OnMessageSent(context.Background(), "alice", "bob", "ping")
		require.NoError(t, err)
	}

	updates := emit.byEvent(EventConversationUpdated)
	last := updates[len(updates)-2] // second to last is bob's update of the third send
	assert.Equal(t, "bob", last.UserID)
	assert.Equal(t, ConversationEvent{PartnerID: "alice", UnreadCount: 3}, last.Data)
}

func TestOnMessageSentActiveViewerSuppressesUnread(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	// Bob is looking at the conversation with Alice.
	require.NoError(t, agg.OnConversationOpened(context.Background(), "bob", "alice"))

	m, err := agg.OnMessageSent(context.Background(), "alice", "bob", "you there?")
	require.NoError(t, err)

	// Persisted already seen, and bob's unread count never moves off zero.
	assert.True(t, m.Seen)
	require.Len(t, repo.saved, 1)
	assert.True(t, repo.saved[0].Seen)

	for _, u := range emit.byEvent(EventConversationUpdated) {
		if u.UserID == "bob" {
			assert.Equal(t, 0, u.Data.(ConversationEvent).UnreadCount)
		}
	}
}

func TestOnMessageSentViewingDifferentPartnerStillCounts(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	// Bob is viewing carol, not alice.
	require.NoError(t, agg.OnConversationOpened(context.Background(), "bob", "carol"))
	emit.mu.Lock()
	emit.events = nil
	emit.mu.Unlock()

	m, err := agg.OnMessageSent(context.Background(), "alice", "bob", "hello")
	require.NoError(t, err)
	assert.False(t, m.Seen)

	updates := emit.byEvent(EventConversationUpdated)
	require.Len(t, updates, 2)
	assert.Equal(t, ConversationEvent{PartnerID: "alice", UnreadCount: 1}, updates[0].Data)
}

func TestOnMessageSentStoreFailureEmitsNothing(t *testing.T) {
	repo := &fakeMessageRepo{saveErr: errors.New("connection refused")}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	_, err := agg.OnMessageSent(context.Background(), "alice", "bob", "hi")
	require.ErrorIs(t, err, ErrPersistence)

	assert.Zero(t, emit.count())
	agg.mu.Lock()
	assert.Empty(t, agg.convs["bob"])
	agg.mu.Unlock()
}

func TestOnMessageSentRejectsInvalidInput(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	_, err := agg.OnMessageSent(context.Background(), "alice", "alice", "hi")
	assert.ErrorIs(t, err, messaging.ErrSelfMessage)

	_, err = agg.OnMessageSent(context.Background(), "alice", "bob", "   ")
	assert.ErrorIs(t, err, messaging.ErrEmptyMessage)

	assert.Zero(t, emit.count())
	assert.Empty(t, repo.saved)
}

func TestOnConversationOpenedResetsUnreadAndMarksRead(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	_, err := agg.OnMessageSent(context.Background(), "alice", "bob", "one")
	require.NoError(t, err)
	_, err = agg.OnMessageSent(context.Background(), "alice", "bob", "two")
	require.NoError(t, err)

	require.NoError(t, agg.OnConversationOpened(context.Background(), "bob", "alice"))

	// No queue wired, so the durable read-mark ran synchronously.
	require.Len(t, repo.marked, 1)
	assert.Equal(t, [2]string{"bob", "alice"}, repo.marked[0])

	updates := emit.byEvent(EventConversationUpdated)
	last := updates[len(updates)-1]
	assert.Equal(t, "bob", last.UserID)
	assert.Equal(t, ConversationEvent{PartnerID: "alice", UnreadCount: 0}, last.Data)
}

func TestOnConversationOpenedMarkReadFailureLeavesStateUntouched(t *testing.T) {
	repo := &fakeMessageRepo{markErr: errors.New("timeout")}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	err := agg.OnConversationOpened(context.Background(), "bob", "alice")
	require.ErrorIs(t, err, ErrPersistence)

	agg.mu.Lock()
	_, active := agg.active["bob"]
	agg.mu.Unlock()
	assert.False(t, active)
	assert.Zero(t, emit.count())
}

func TestOnConversationClosedReenablesCounting(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	require.NoError(t, agg.OnConversationOpened(context.Background(), "bob", "alice"))
	agg.OnConversationClosed("bob")

	m, err := agg.OnMessageSent(context.Background(), "alice", "bob", "after close")
	require.NoError(t, err)
	assert.False(t, m.Seen)

	updates := emit.byEvent(EventConversationUpdated)
	var bobUnread int
	for _, u := range updates {
		if u.UserID == "bob" {
			bobUnread = u.Data.(ConversationEvent).UnreadCount
		}
	}
	assert.Equal(t, 1, bobUnread)
}

func TestReconcileOverwritesCachedEntries(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	_, err := agg.OnMessageSent(context.Background(), "alice", "bob", "drift")
	require.NoError(t, err)

	// Authoritative read says bob has 5 unread from alice and a thread with carol.
	agg.Reconcile("bob", []messaging.Conversation{
		{PartnerID: "alice", UnreadCount: 5},
		{PartnerID: "carol", UnreadCount: 2},
	})

	agg.mu.Lock()
	defer agg.mu.Unlock()
	require.Len(t, agg.convs["bob"], 2)
	assert.Equal(t, 5, agg.convs["bob"]["alice"].UnreadCount)
	assert.Equal(t, 2, agg.convs["bob"]["carol"].UnreadCount)
}

func TestTypingRelaysToReceiverOnly(t *testing.T) {
	repo := &fakeMessageRepo{}
	emit := &recordingEmitter{}
	agg := newTestAggregator(repo, emit)

	agg.Typing("alice", "bob")

	events := emit.byEvent(EventTypingIndicator)
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].UserID)
	assert.Equal(t, TypingEvent{SenderID: "alice"}, events[0].Data)
	assert.Empty(t, repo.saved)
}

func TestTypingIgnoresInvalidSignals(t *testing.T) {
	emit := &recordingEmitter{}
	agg := newTestAggregator(&fakeMessageRepo{}, emit)

	agg.Typing("alice", "alice")
	agg.Typing("", "bob")
	agg.Typing("alice", "")

	assert.Zero(t, emit.count())
}
