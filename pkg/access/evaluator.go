package access

import "github.com/vendora/gatekeeper/pkg/catalog"

// HasPermission reports whether the identity holds a single permission.
// A nil identity holds nothing; a super admin holds everything, including
// permissions absent from every role default.
func HasPermission(id *Identity, perm catalog.Permission) bool {
	if id == nil {
		return false
	}
	if id.IsSuperAdmin {
		return true
	}
	for _, p := range id.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the identity holds at least one of the
// given permissions.
func HasAnyPermission(id *Identity, perms []catalog.Permission) bool {
	if id == nil {
		return false
	}
	if id.IsSuperAdmin {
		return true
	}
	granted := permissionSet(id)
	for _, p := range perms {
		if granted[p] {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the identity holds every one of the
// given permissions.
func HasAllPermissions(id *Identity, perms []catalog.Permission) bool {
	if id == nil {
		return false
	}
	if id.IsSuperAdmin {
		return true
	}
	granted := permissionSet(id)
	for _, p := range perms {
		if !granted[p] {
			return false
		}
	}
	return true
}

// ModuleAccessibleWithPermissions reports whether a granted permission list
// unlocks a module. Module gating is any-of: one matching permission is
// enough.
func ModuleAccessibleWithPermissions(module catalog.AdminModule, granted []catalog.Permission) bool {
	required := catalog.ModulePermissions(module)
	if len(required) == 0 {
		return false
	}
	have := make(map[catalog.Permission]bool, len(granted))
	for _, p := range granted {
		have[p] = true
	}
	for _, p := range required {
		if have[p] {
			return true
		}
	}
	return false
}

// IdentityCanAccessModule reports whether an identity may see an admin
// module. Only staff identities can; platform users are denied outright
// regardless of any permissions they carry.
func IdentityCanAccessModule(id *Identity, module catalog.AdminModule) bool {
	if id == nil || !catalog.IsStaff(id.Role) {
		return false
	}
	if id.IsSuperAdmin {
		return true
	}
	return ModuleAccessibleWithPermissions(module, id.Permissions)
}

// PermissionsForRole returns the default grant for a role: the catalog
// table entry for staff roles, empty for platform roles.
func PermissionsForRole(role catalog.Role) []catalog.Permission {
	return catalog.RolePermissions(role)
}

func permissionSet(id *Identity) map[catalog.Permission]bool {
	set := make(map[catalog.Permission]bool, len(id.Permissions))
	for _, p := range id.Permissions {
		set[p] = true
	}
	return set
}
