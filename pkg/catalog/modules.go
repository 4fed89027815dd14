package catalog

// AdminModule names a functional area of the staff console.
type AdminModule string

const (
	ModuleUsers     AdminModule = "users"
	ModuleVendors   AdminModule = "vendors"
	ModuleProducts  AdminModule = "products"
	ModuleOrders    AdminModule = "orders"
	ModuleStaff     AdminModule = "staff"
	ModuleSettings  AdminModule = "settings"
	ModuleAnalytics AdminModule = "analytics"
	ModuleServices  AdminModule = "services"
	ModuleSupport   AdminModule = "support"
	ModuleFinance   AdminModule = "finance"
	ModuleAudit     AdminModule = "audit"
)

// modulePermissions maps each module to the permissions that unlock it.
// Holding ANY permission in the set grants module visibility, so these stay
// slices even while most currently hold a single entry.
var modulePermissions = map[AdminModule][]Permission{
	ModuleUsers:     {PermUsersView},
	ModuleVendors:   {PermVendorsView},
	ModuleProducts:  {PermProductsView},
	ModuleOrders:    {PermOrdersView},
	ModuleStaff:     {PermStaffView},
	ModuleSettings:  {PermSettingsView},
	ModuleAnalytics: {PermAnalyticsView},
	ModuleServices:  {PermServicesView},
	ModuleSupport:   {PermSupportView},
	ModuleFinance:   {PermFinanceView},
	ModuleAudit:     {PermAuditView},
}

// AllModules returns every admin module.
func AllModules() []AdminModule {
	return []AdminModule{
		ModuleUsers, ModuleVendors, ModuleProducts, ModuleOrders,
		ModuleStaff, ModuleSettings, ModuleAnalytics, ModuleServices,
		ModuleSupport, ModuleFinance, ModuleAudit,
	}
}

// ModulePermissions returns the permission set gating a module. Unknown
// modules get an empty slice, which no grant satisfies.
func ModulePermissions(m AdminModule) []Permission {
	perms, ok := modulePermissions[m]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
