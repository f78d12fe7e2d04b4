package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/fouad-abdeen/sustainable-market-auth"
)

func TestUserRoleIsValid(t *testing.T) {
	for _, role := range auth.GetAllRoles() {
		assert.True(t, role.IsValid(), "role %s should be valid", role)
	}

	assert.False(t, auth.UserRole("").IsValid())
	assert.False(t, auth.UserRole("SUPERUSER").IsValid())
	assert.False(t, auth.UserRole("customer").IsValid(), "roles are case sensitive")
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("SELLER")
	require.True(t, ok)
	assert.Equal(t, auth.RoleSeller, role)

	_, ok = auth.ParseRole("seller")
	assert.False(t, ok)

	_, ok = auth.ParseRole("")
	assert.False(t, ok)
}

func TestRolePermissions(t *testing.T) {
	t.Run("customers manage carts, not items", func(t *testing.T) {
		assert.True(t, auth.RoleCustomer.Can(auth.PermissionBrowseCatalog))
		assert.True(t, auth.RoleCustomer.Can(auth.PermissionManageCart))
		assert.False(t, auth.RoleCustomer.Can(auth.PermissionManageItems))
		assert.False(t, auth.RoleCustomer.Can(auth.PermissionManageUsers))
	})

	t.Run("sellers manage items, not carts", func(t *testing.T) {
		assert.True(t, auth.RoleSeller.Can(auth.PermissionManageItems))
		assert.False(t, auth.RoleSeller.Can(auth.PermissionManageCart))
	})

	t.Run("admins hold every permission", func(t *testing.T) {
		for _, p := range []auth.Permission{
			auth.PermissionBrowseCatalog,
			auth.PermissionManageCart,
			auth.PermissionManageItems,
			auth.PermissionManageUsers,
		} {
			assert.True(t, auth.RoleAdmin.Can(p), "admin should hold %s", p)
		}
	})

	t.Run("unknown roles hold nothing", func(t *testing.T) {
		assert.False(t, auth.UserRole("GUEST").Can(auth.PermissionBrowseCatalog))
		assert.Empty(t, auth.UserRole("GUEST").Permissions())
	})

	t.Run("permissions returns a copy", func(t *testing.T) {
		perms := auth.RoleCustomer.Permissions()
		require.NotEmpty(t, perms)

		perms[0] = auth.Permission("mutated")
		assert.NotContains(t, auth.RoleCustomer.Permissions(), auth.Permission("mutated"))
	})
}

func TestUserRoleOneOf(t *testing.T) {
	staff := []auth.UserRole{auth.RoleSeller, auth.RoleAdmin}

	assert.True(t, auth.RoleAdmin.OneOf(staff))
	assert.False(t, auth.RoleCustomer.OneOf(staff))
	assert.False(t, auth.RoleCustomer.OneOf(nil))
}
