package domain

// Role is the explicit actor role enum. Capability checks go through Can so
// role membership is never compared as strings at call sites.
type Role string

const (
	RoleGuard      Role = "guardia"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Capability names an action a role may or may not perform.
type Capability string

const (
	CapRegisterAccess Capability = "register_access"
	CapOverrideEvent  Capability = "override_event"
	CapBulkImport     Capability = "bulk_import"
	CapManageRegistry Capability = "manage_registry"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleGuard: {
		CapRegisterAccess: true,
	},
	RoleAdmin: {
		CapRegisterAccess: true,
		CapOverrideEvent:  true,
		CapBulkImport:     true,
		CapManageRegistry: true,
	},
	RoleSuperAdmin: {
		CapRegisterAccess: true,
		CapOverrideEvent:  true,
		CapBulkImport:     true,
		CapManageRegistry: true,
	},
}

// ParseRole validates a role string from a token or request.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGuard, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// Can reports whether the role grants the capability. Unknown roles grant
// nothing.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
