package messaging

// Conversation is the per-observer view of a message thread with one partner:
// the last message exchanged and how many of the partner's messages the
// observer has not read yet. It is a derived cache entry: the durable store
// is authoritative and cached values reconcile toward it, never the reverse.
type Conversation struct {
	PartnerID   string   `json:"partner_id"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
