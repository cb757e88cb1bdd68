package realtime

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"servihub/internal/pkg/identity"
)

// Envelope is the wire frame for every outbound event.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Relay fans events out to live connections. It never mutates durable state and
// delivery is strictly best-effort: a failed connection write is dropped, not
// retried. The client fetches authoritative state over the read API on
// reconnect. Ephemeral signals (typing, presence notices) ride the same path
// with no storage at all.
type Relay struct {
	registry *Registry
	log      zerolog.Logger
}

// NewRelay constructs a Relay over the given registry.
func NewRelay(registry *Registry, log zerolog.Logger) *Relay {
	return &Relay{registry: registry, log: log}
}

// Emit delivers the event to every live connection of userID, independently and
// without ordering guarantees across connections. A user with zero live
// connections is a silent no-op. Returns the number of successful deliveries.
func (r *Relay) Emit(userID string, event string, data interface{}) int {
	conns := r.registry.ConnectionsOf(userID)
	if len(conns) == 0 {
		return 0
	}
	payload, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("relay: encode envelope")
		return 0
	}
	return r.deliver(conns, event, payload)
}

// EmitToRole fans the event out to every connection registered under role.
func (r *Relay) EmitToRole(role identity.Role, event string, data interface{}) int {
	conns := r.registry.ConnectionsOfRole(role)
	if len(conns) == 0 {
		return 0
	}
	payload, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("relay: encode envelope")
		return 0
	}
	return r.deliver(conns, event, payload)
}

func (r *Relay) deliver(conns []*Connection, event string, payload []byte) int {
	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			r.log.Debug().
				Str("event", event).
				Str("connection_id", conn.ID).
				Str("user_id", conn.UserID).
				Err(err).
				Msg("relay: delivery dropped")
			continue
		}
		delivered++
	}
	return delivered
}
