package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/gatekeeper/pkg/catalog"
)

func staffIdentity(role catalog.Role) *Identity {
	return NewIdentity("u-1", "staff@vendora.test", role, nil)
}

func TestHasPermission(t *testing.T) {
	manager := staffIdentity(catalog.RoleManager)

	assert.True(t, HasPermission(manager, catalog.PermOrdersRefund))
	assert.False(t, HasPermission(manager, catalog.PermStaffDelete))
	assert.False(t, HasPermission(nil, catalog.PermOrdersView))
}

func TestSuperAdminShortCircuits(t *testing.T) {
	super := staffIdentity(catalog.RoleSuperAdmin)

	// Including a permission that appears in no role's default table.
	assert.True(t, HasPermission(super, catalog.Permission("warehouse:teleport")))
	assert.True(t, HasAnyPermission(super, nil))
	assert.True(t, HasAllPermissions(super, []catalog.Permission{
		catalog.PermStaffAssignRoles, catalog.Permission("warehouse:teleport"),
	}))
	assert.True(t, IdentityCanAccessModule(super, catalog.ModuleFinance))
}

func TestHasAnyPermission(t *testing.T) {
	viewer := staffIdentity(catalog.RoleViewer)

	assert.True(t, HasAnyPermission(viewer, []catalog.Permission{
		catalog.PermStaffAssignRoles, catalog.PermOrdersView,
	}))
	assert.False(t, HasAnyPermission(viewer, []catalog.Permission{
		catalog.PermStaffAssignRoles, catalog.PermOrdersRefund,
	}))
	assert.False(t, HasAnyPermission(viewer, nil))
	assert.False(t, HasAnyPermission(nil, []catalog.Permission{catalog.PermOrdersView}))
}

func TestHasAllPermissions(t *testing.T) {
	manager := staffIdentity(catalog.RoleManager)

	assert.True(t, HasAllPermissions(manager, []catalog.Permission{
		catalog.PermOrdersView, catalog.PermOrdersRefund,
	}))
	assert.False(t, HasAllPermissions(manager, []catalog.Permission{
		catalog.PermOrdersView, catalog.PermStaffDelete,
	}))
	// Vacuously true on the empty set.
	assert.True(t, HasAllPermissions(manager, nil))
}

func TestStaffOverrideSupersedesRoleDefault(t *testing.T) {
	// A staff profile carrying an explicit grant replaces the role table
	// entirely; it is not merged with the defaults.
	override := []catalog.Permission{catalog.PermSupportView, catalog.PermSupportRespond}
	id := NewIdentity("u-2", "support@vendora.test", catalog.RoleManager, override)

	assert.True(t, HasPermission(id, catalog.PermSupportRespond))
	// Present in the manager default, absent from the override.
	assert.False(t, HasPermission(id, catalog.PermOrdersRefund))
	require.Len(t, id.Permissions, 2)
}

func TestEmptyOverrideGrantsNothing(t *testing.T) {
	id := NewIdentity("u-3", "locked@vendora.test", catalog.RoleStaff, []catalog.Permission{})
	assert.False(t, HasPermission(id, catalog.PermOrdersView))
	assert.Empty(t, id.Permissions)
}

func TestModuleAccessibleWithPermissions(t *testing.T) {
	assert.True(t, ModuleAccessibleWithPermissions(catalog.ModuleOrders,
		[]catalog.Permission{catalog.PermOrdersView}))
	assert.False(t, ModuleAccessibleWithPermissions(catalog.ModuleOrders,
		[]catalog.Permission{catalog.PermUsersView}))
	assert.False(t, ModuleAccessibleWithPermissions(catalog.ModuleOrders, nil))
	assert.False(t, ModuleAccessibleWithPermissions(catalog.AdminModule("unknown"),
		[]catalog.Permission{catalog.PermOrdersView}))
}

func TestIdentityCanAccessModule(t *testing.T) {
	staff := staffIdentity(catalog.RoleStaff)
	assert.True(t, IdentityCanAccessModule(staff, catalog.ModuleSupport))
	assert.False(t, IdentityCanAccessModule(staff, catalog.ModuleFinance))

	// Platform users never see admin modules, even with a matching grant.
	vendor := NewIdentity("v-1", "vendor@vendora.test", catalog.RoleVendor,
		[]catalog.Permission{catalog.PermOrdersView})
	assert.False(t, IdentityCanAccessModule(vendor, catalog.ModuleOrders))

	assert.False(t, IdentityCanAccessModule(nil, catalog.ModuleOrders))
}

func TestPermissionsForRole(t *testing.T) {
	assert.Len(t, PermissionsForRole(catalog.RoleSuperAdmin), len(catalog.AllPermissions()))
	assert.Empty(t, PermissionsForRole(catalog.RoleCustomer))
	assert.Empty(t, PermissionsForRole(catalog.RoleVendor))
}

func TestNewIdentityCopiesOverride(t *testing.T) {
	override := []catalog.Permission{catalog.PermOrdersView}
	id := NewIdentity("u-4", "x@vendora.test", catalog.RoleStaff, override)
	override[0] = catalog.PermStaffDelete
	assert.True(t, HasPermission(id, catalog.PermOrdersView))
	assert.False(t, HasPermission(id, catalog.PermStaffDelete))
}
