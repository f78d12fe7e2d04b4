package auth

// Permission names a coarse capability a role grants. The permission map is
// the extension point for finer-grained checks; request gating itself only
// consults role membership.
type Permission string

const (
	// PermissionBrowseCatalog allows reading items and seller storefronts
	PermissionBrowseCatalog Permission = "catalog.browse"
	// PermissionManageCart allows cart reads and writes
	PermissionManageCart Permission = "cart.manage"
	// PermissionManageItems allows creating and editing own items
	PermissionManageItems Permission = "items.manage"
	// PermissionManageUsers allows administrative user management
	PermissionManageUsers Permission = "users.manage"
)

var rolePermissions = map[UserRole][]Permission{
	RoleCustomer: {PermissionBrowseCatalog, PermissionManageCart},
	RoleSeller:   {PermissionBrowseCatalog, PermissionManageItems},
	RoleAdmin:    {PermissionBrowseCatalog, PermissionManageCart, PermissionManageItems, PermissionManageUsers},
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// Can checks whether the role grants a permission
func (r UserRole) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// Permissions returns the capability set for the role
func (r UserRole) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// OneOf reports whether the role appears in the given set
func (r UserRole) OneOf(roles []UserRole) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleCustomer,
		RoleSeller,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
