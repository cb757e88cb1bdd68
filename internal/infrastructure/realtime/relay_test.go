package realtime

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servihub/internal/pkg/identity"
)

// drain pops every queued frame off the connection's send buffer. Tests never
// start the write loop, so enqueued payloads stay in the channel.
func drain(conn *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case payload := <-conn.send:
			out = append(out, payload)
		default:
			return out
		}
	}
}

func TestRelayEmitToOfflineUserIsNoOp(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg, zerolog.Nop())

	delivered := relay.Emit("ghost", "message_received", map[string]string{"id": "m1"})
	assert.Equal(t, 0, delivered)
}

func TestRelayEmitReachesEveryConnectionOfUser(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg, zerolog.Nop())

	phone := NewConnection("user-1", identity.RoleCustomer, nil)
	laptop := NewConnection("user-1", identity.RoleCustomer, nil)
	other := NewConnection("user-2", identity.RoleCustomer, nil)
	reg.Register(phone)
	reg.Register(laptop)
	reg.Register(other)

	delivered := relay.Emit("user-1", "conversation_updated", map[string]int{"unread": 3})
	assert.Equal(t, 2, delivered)

	for _, conn := range []*Connection{phone, laptop} {
		frames := drain(conn)
		require.Len(t, frames, 1)

		var env Envelope
		require.NoError(t, json.Unmarshal(frames[0], &env))
		assert.Equal(t, "conversation_updated", env.Type)
	}
	assert.Empty(t, drain(other))
}

func TestRelayEmitToRole(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg, zerolog.Nop())

	adminA := NewConnection("admin-a", identity.RoleAdmin, nil)
	adminB := NewConnection("admin-b", identity.RoleAdmin, nil)
	customer := NewConnection("user-1", identity.RoleCustomer, nil)
	reg.Register(adminA)
	reg.Register(adminB)
	reg.Register(customer)

	delivered := relay.EmitToRole(identity.RoleAdmin, "ticket_opened", map[string]string{"id": "t1"})
	assert.Equal(t, 2, delivered)
	assert.Empty(t, drain(customer))
}

func TestRelayDropsClosedConnectionWithoutAffectingOthers(t *testing.T) {
	reg := NewRegistry()
	relay := NewRelay(reg, zerolog.Nop())

	dead := NewConnection("user-1", identity.RoleCustomer, nil)
	live := NewConnection("user-1", identity.RoleCustomer, nil)
	reg.Register(dead)
	reg.Register(live)

	dead.Close(1000, "gone")

	delivered := relay.Emit("user-1", "message_received", map[string]string{"id": "m1"})
	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(live), 1)
}

func TestConnectionSendAfterCloseReturnsError(t *testing.T) {
	conn := NewConnection("user-1", identity.RoleCustomer, nil)
	conn.Close(1000, "bye")
	conn.Close(1000, "bye") // close is idempotent

	err := conn.Send([]byte(`{}`))
	assert.ErrorIs(t, err, ErrConnClosed)
}
