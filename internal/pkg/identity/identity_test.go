package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleProvider.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("moderator").Valid())
	assert.False(t, Role("").Valid())
}

func TestFromRequestPrefersHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?user_id=query-user&role=customer", nil)
	r.Header.Set("X-User-ID", "header-user")
	r.Header.Set("X-User-Role", "admin")

	userID, role := FromRequest(r)
	assert.Equal(t, "header-user", userID)
	assert.Equal(t, RoleAdmin, role)
}

func TestFromRequestFallsBackToQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?user_id=query-user&role=provider", nil)

	userID, role := FromRequest(r)
	assert.Equal(t, "query-user", userID)
	assert.Equal(t, RoleProvider, role)
}

func TestFromRequestMissingIdentity(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)

	userID, role := FromRequest(r)
	assert.Empty(t, userID)
	assert.False(t, role.Valid())
}
