package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageNormalizesText(t *testing.T) {
	m, err := NewMessage("alice", "bob", "  hello there \n")
	require.NoError(t, err)

	assert.Equal(t, "hello there", m.Text)
	assert.Equal(t, "alice", m.SenderID)
	assert.Equal(t, "bob", m.ReceiverID)
	assert.False(t, m.Seen)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestNewMessageRejectsSelfMessage(t *testing.T) {
	_, err := NewMessage("alice", "alice", "hi me")
	assert.ErrorIs(t, err, ErrSelfMessage)
}

func TestNewMessageRejectsEmptyText(t *testing.T) {
	_, err := NewMessage("alice", "bob", "   \t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestNewMessageRejectsMissingParties(t *testing.T) {
	_, err := NewMessage("", "bob", "hi")
	assert.ErrorIs(t, err, ErrMissingParties)

	_, err = NewMessage("alice", "", "hi")
	assert.ErrorIs(t, err, ErrMissingParties)
}
