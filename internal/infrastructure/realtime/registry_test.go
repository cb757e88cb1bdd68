package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servihub/internal/pkg/identity"
)

func TestRegistryAllowsMultipleConnectionsPerUser(t *testing.T) {
	reg := NewRegistry()

	first := NewConnection("user-1", identity.RoleCustomer, nil)
	second := NewConnection("user-1", identity.RoleCustomer, nil)
	reg.Register(first)
	reg.Register(second)

	conns := reg.ConnectionsOf("user-1")
	require.Len(t, conns, 2)
	assert.NotEqual(t, conns[0].ID, conns[1].ID)
	assert.Equal(t, 2, reg.Count())
}

func TestRegistryUnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	conn := NewConnection("user-1", identity.RoleProvider, nil)
	reg.Register(conn)

	reg.Unregister(conn.ID)
	reg.Unregister(conn.ID) // duplicate disconnect event

	assert.Empty(t, reg.ConnectionsOf("user-1"))
	assert.Equal(t, 0, reg.Count())
}

func TestRegistryUnregisterKeepsSiblingConnections(t *testing.T) {
	reg := NewRegistry()

	phone := NewConnection("user-1", identity.RoleCustomer, nil)
	laptop := NewConnection("user-1", identity.RoleCustomer, nil)
	reg.Register(phone)
	reg.Register(laptop)

	reg.Unregister(phone.ID)

	conns := reg.ConnectionsOf("user-1")
	require.Len(t, conns, 1)
	assert.Equal(t, laptop.ID, conns[0].ID)
}

func TestRegistryRoleIndex(t *testing.T) {
	reg := NewRegistry()

	adminA := NewConnection("admin-a", identity.RoleAdmin, nil)
	adminB := NewConnection("admin-b", identity.RoleAdmin, nil)
	customer := NewConnection("user-1", identity.RoleCustomer, nil)
	reg.Register(adminA)
	reg.Register(adminB)
	reg.Register(customer)

	admins := reg.ConnectionsOfRole(identity.RoleAdmin)
	require.Len(t, admins, 2)
	for _, conn := range admins {
		assert.Equal(t, identity.RoleAdmin, conn.Role)
	}

	assert.Empty(t, reg.ConnectionsOfRole(identity.RoleProvider))
}

func TestRegistryConcurrentRegisterUnregister(t *testing.T) {
	reg := NewRegistry()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				conn := NewConnection("user-1", identity.RoleCustomer, nil)
				reg.Register(conn)
				reg.ConnectionsOf("user-1")
				reg.Unregister(conn.ID)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.ConnectionsOf("user-1"))
}
