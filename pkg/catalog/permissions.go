package catalog

// Permission is an atomic capability of the form "resource:action".
type Permission string

// Users
const (
	PermUsersView    Permission = "users:view"
	PermUsersCreate  Permission = "users:create"
	PermUsersEdit    Permission = "users:edit"
	PermUsersDelete  Permission = "users:delete"
	PermUsersSuspend Permission = "users:suspend"
)

// Vendors
const (
	PermVendorsView    Permission = "vendors:view"
	PermVendorsCreate  Permission = "vendors:create"
	PermVendorsEdit    Permission = "vendors:edit"
	PermVendorsDelete  Permission = "vendors:delete"
	PermVendorsApprove Permission = "vendors:approve"
	PermVendorsSuspend Permission = "vendors:suspend"
)

// Products
const (
	PermProductsView     Permission = "products:view"
	PermProductsCreate   Permission = "products:create"
	PermProductsEdit     Permission = "products:edit"
	PermProductsDelete   Permission = "products:delete"
	PermProductsPublish  Permission = "products:publish"
	PermProductsModerate Permission = "products:moderate"
)

// Orders
const (
	PermOrdersView    Permission = "orders:view"
	PermOrdersCreate  Permission = "orders:create"
	PermOrdersEdit    Permission = "orders:edit"
	PermOrdersCancel  Permission = "orders:cancel"
	PermOrdersRefund  Permission = "orders:refund"
	PermOrdersFulfill Permission = "orders:fulfill"
	PermOrdersExport  Permission = "orders:export"
)

// Categories
const (
	PermCategoriesView   Permission = "categories:view"
	PermCategoriesCreate Permission = "categories:create"
	PermCategoriesEdit   Permission = "categories:edit"
	PermCategoriesDelete Permission = "categories:delete"
)

// Staff administration
const (
	PermStaffView        Permission = "staff:view"
	PermStaffCreate      Permission = "staff:create"
	PermStaffEdit        Permission = "staff:edit"
	PermStaffDelete      Permission = "staff:delete"
	PermStaffAssignRoles Permission = "staff:assign_roles"
)

// Settings
const (
	PermSettingsView Permission = "settings:view"
	PermSettingsEdit Permission = "settings:edit"
)

// Analytics
const (
	PermAnalyticsView   Permission = "analytics:view"
	PermAnalyticsExport Permission = "analytics:export"
)

// Services
const (
	PermServicesView    Permission = "services:view"
	PermServicesCreate  Permission = "services:create"
	PermServicesEdit    Permission = "services:edit"
	PermServicesDelete  Permission = "services:delete"
	PermServicesApprove Permission = "services:approve"
)

// Audit
const (
	PermAuditView   Permission = "audit:view"
	PermAuditExport Permission = "audit:export"
)

// Support
const (
	PermSupportView     Permission = "support:view"
	PermSupportRespond  Permission = "support:respond"
	PermSupportEscalate Permission = "support:escalate"
	PermSupportClose    Permission = "support:close"
)

// Finance
const (
	PermFinanceView        Permission = "finance:view"
	PermFinancePayouts     Permission = "finance:payouts"
	PermFinanceCommissions Permission = "finance:commissions"
	PermFinanceReconcile   Permission = "finance:reconcile"
	PermFinanceExport      Permission = "finance:export"
)

// allPermissions is the closed permission catalog, grouped by resource.
var allPermissions = []Permission{
	PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersSuspend,
	PermVendorsView, PermVendorsCreate, PermVendorsEdit, PermVendorsDelete, PermVendorsApprove, PermVendorsSuspend,
	PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete, PermProductsPublish, PermProductsModerate,
	PermOrdersView, PermOrdersCreate, PermOrdersEdit, PermOrdersCancel, PermOrdersRefund, PermOrdersFulfill, PermOrdersExport,
	PermCategoriesView, PermCategoriesCreate, PermCategoriesEdit, PermCategoriesDelete,
	PermStaffView, PermStaffCreate, PermStaffEdit, PermStaffDelete, PermStaffAssignRoles,
	PermSettingsView, PermSettingsEdit,
	PermAnalyticsView, PermAnalyticsExport,
	PermServicesView, PermServicesCreate, PermServicesEdit, PermServicesDelete, PermServicesApprove,
	PermAuditView, PermAuditExport,
	PermSupportView, PermSupportRespond, PermSupportEscalate, PermSupportClose,
	PermFinanceView, PermFinancePayouts, PermFinanceCommissions, PermFinanceReconcile, PermFinanceExport,
}

// AllPermissions returns a copy of the full permission catalog.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// rolePermissions maps each staff role to its default grant. The super-admin
// entry is the full catalog; lower tiers hold subsets of it. Platform roles
// have no entry: any fine-grained rights they hold are domain concerns, not
// static defaults.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: allPermissions,
	RoleAdmin: {
		PermUsersView, PermUsersCreate, PermUsersEdit, PermUsersDelete, PermUsersSuspend,
		PermVendorsView, PermVendorsCreate, PermVendorsEdit, PermVendorsDelete, PermVendorsApprove, PermVendorsSuspend,
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete, PermProductsPublish, PermProductsModerate,
		PermOrdersView, PermOrdersCreate, PermOrdersEdit, PermOrdersCancel, PermOrdersRefund, PermOrdersFulfill, PermOrdersExport,
		PermCategoriesView, PermCategoriesCreate, PermCategoriesEdit, PermCategoriesDelete,
		PermStaffView, PermStaffCreate, PermStaffEdit,
		PermSettingsView, PermSettingsEdit,
		PermAnalyticsView, PermAnalyticsExport,
		PermServicesView, PermServicesCreate, PermServicesEdit, PermServicesDelete, PermServicesApprove,
		PermAuditView, PermAuditExport,
		PermSupportView, PermSupportRespond, PermSupportEscalate, PermSupportClose,
		PermFinanceView, PermFinancePayouts, PermFinanceCommissions, PermFinanceReconcile, PermFinanceExport,
	},
	RoleManager: {
		PermUsersView, PermUsersEdit, PermUsersSuspend,
		PermVendorsView, PermVendorsEdit, PermVendorsApprove, PermVendorsSuspend,
		PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsPublish, PermProductsModerate,
		PermOrdersView, PermOrdersEdit, PermOrdersCancel, PermOrdersRefund, PermOrdersFulfill, PermOrdersExport,
		PermCategoriesView, PermCategoriesCreate, PermCategoriesEdit, PermCategoriesDelete,
		PermStaffView,
		PermSettingsView,
		PermAnalyticsView, PermAnalyticsExport,
		PermServicesView, PermServicesCreate, PermServicesEdit, PermServicesApprove,
		PermAuditView,
		PermSupportView, PermSupportRespond, PermSupportEscalate, PermSupportClose,
		PermFinanceView,
	},
	RoleStaff: {
		PermUsersView,
		PermVendorsView,
		PermProductsView, PermProductsEdit,
		PermOrdersView, PermOrdersEdit, PermOrdersFulfill,
		PermCategoriesView,
		PermAnalyticsView,
		PermServicesView,
		PermSupportView, PermSupportRespond, PermSupportClose,
	},
	RoleViewer: {
		PermUsersView,
		PermVendorsView,
		PermProductsView,
		PermOrdersView,
		PermCategoriesView,
		PermStaffView,
		PermSettingsView,
		PermAnalyticsView,
		PermServicesView,
		PermAuditView,
		PermSupportView,
		PermFinanceView,
	},
}

// RolePermissions returns the default permission grant for a staff role.
// Platform roles and unknown values get an empty slice. The result is a
// copy; callers may not mutate the catalog through it.
func RolePermissions(r Role) []Permission {
	perms, ok := rolePermissions[r]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
