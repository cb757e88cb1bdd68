package realtime

import (
	"sync"

	"servihub/internal/pkg/identity"
)

// Registry maps user ids to their set of live connections and keeps a secondary
// index by role for role-scoped fan-out ("all on-duty admins").
//
// A user may hold any number of simultaneous connections; registering a second
// device never evicts the first. State is process-local and rebuilt from zero on
// restart: clients re-register on reconnect, and everything durable lives in
// the external store.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection                   // connectionID -> connection
	users map[string]map[string]*Connection        // userID -> connectionID -> connection
	roles map[identity.Role]map[string]*Connection // role -> connectionID -> connection
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
		users: make(map[string]map[string]*Connection),
		roles: make(map[identity.Role]map[string]*Connection),
	}
}

// Register adds the connection to the user and role indexes. Every call admits
// the connection; multiplicity is never rejected. The caller starts the write
// loop once the connection is ready to flush.
func (r *Registry) Register(conn *Connection) {
	r.mu.Lock()
	r.conns[conn.ID] = conn

	byUser := r.users[conn.UserID]
	if byUser == nil {
		byUser = make(map[string]*Connection)
		r.users[conn.UserID] = byUser
	}
	byUser[conn.ID] = conn

	byRole := r.roles[conn.Role]
	if byRole == nil {
		byRole = make(map[string]*Connection)
		r.roles[conn.Role] = byRole
	}
	byRole[conn.ID] = conn
	r.mu.Unlock()
}

// Unregister removes the connection from all indexes. It is a no-op if the id
// is already gone, so duplicate disconnect events are harmless.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connectionID]
	if !ok {
		return
	}
	delete(r.conns, connectionID)

	if byUser := r.users[conn.UserID]; byUser != nil {
		delete(byUser, connectionID)
		if len(byUser) == 0 {
			delete(r.users, conn.UserID)
		}
	}
	if byRole := r.roles[conn.Role]; byRole != nil {
		delete(byRole, connectionID)
		if len(byRole) == 0 {
			delete(r.roles, conn.Role)
		}
	}
}

// ConnectionsOf returns a snapshot of the user's live connections.
func (r *Registry) ConnectionsOf(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := r.users[userID]
	if len(byUser) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(byUser))
	for _, conn := range byUser {
		out = append(out, conn)
	}
	return out
}

// ConnectionsOfRole returns a snapshot of every connection registered under role.
func (r *Registry) ConnectionsOfRole(role identity.Role) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byRole := r.roles[role]
	if len(byRole) == 0 {
		return nil
	}
	out := make([]*Connection, 0, len(byRole))
	for _, conn := range byRole {
		out = append(out, conn)
	}
	return out
}

// Count returns the number of tracked connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]*Connection)
	r.users = make(map[string]map[string]*Connection)
	r.roles = make(map[identity.Role]map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "registry shutdown")
	}
}
