package identity

import "net/http"

// Role is the marketplace-wide role attached to an authenticated user.
// It arrives from the external identity provider and is trusted as-is;
// the realtime layer only uses it for role-scoped fan-out and for the
// support-ticket policy checks.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin is a convenience for the support-ticket policy checks.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// FromRequest extracts the authenticated user id and role asserted by the
// identity provider. Headers win; query parameters are a fallback for local
// tooling and websocket clients that cannot set headers.
func FromRequest(r *http.Request) (string, Role) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	role := Role(r.Header.Get("X-User-Role"))
	if role == "" {
		role = Role(r.URL.Query().Get("role"))
	}
	return userID, role
}
