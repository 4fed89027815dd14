package catalog

// Role identifies a principal's access tier on the platform.
type Role string

// Staff roles, ordered by tier. Platform roles carry no tier.
const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleViewer     Role = "viewer"

	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
)

// staffTiers maps each staff role to its privilege tier. Higher is more
// privileged. Platform roles are absent.
var staffTiers = map[Role]int{
	RoleSuperAdmin: 5,
	RoleAdmin:      4,
	RoleManager:    3,
	RoleStaff:      2,
	RoleViewer:     1,
}

// StaffRoles returns all staff roles in descending tier order.
func StaffRoles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff, RoleViewer}
}

// AllRoles returns every role the platform recognizes.
func AllRoles() []Role {
	return append(StaffRoles(), RoleVendor, RoleCustomer)
}

// IsValidRole reports whether r is one of the closed role set.
func IsValidRole(r Role) bool {
	if _, ok := staffTiers[r]; ok {
		return true
	}
	return r == RoleVendor || r == RoleCustomer
}

// IsStaff reports whether r is one of the five staff tiers.
func IsStaff(r Role) bool {
	_, ok := staffTiers[r]
	return ok
}

// IsAdminTier reports whether r is admin or above. Admin-tier roles may
// access admin-bucketed and vendor-bucketed routes.
func IsAdminTier(r Role) bool {
	return staffTiers[r] >= staffTiers[RoleAdmin]
}

// IsSuperAdmin reports whether r is the unrestricted tier.
func IsSuperAdmin(r Role) bool {
	return r == RoleSuperAdmin
}

// IsVendor reports whether r is the vendor platform role.
func IsVendor(r Role) bool {
	return r == RoleVendor
}

// IsPlatformUser reports whether r is an external marketplace role.
func IsPlatformUser(r Role) bool {
	return r == RoleVendor || r == RoleCustomer
}

// StaffTier returns the privilege tier for a staff role, 0 for platform
// roles and unknown values.
func StaffTier(r Role) int {
	return staffTiers[r]
}
