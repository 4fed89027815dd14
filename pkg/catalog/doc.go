// Package catalog defines the static role, permission, and module catalogs
// for the Vendora marketplace platform.
//
// # Roles
//
// The role set is closed: five staff tiers ordered by privilege
// (super_admin > admin > manager > staff > viewer) and two platform roles
// (vendor, customer). All role classification (IsStaff, IsAdminTier,
// IsPlatformUser) lives here so no other package compares role strings
// directly.
//
// # Permissions
//
// Permissions are atomic "resource:action" strings grouped by resource
// (users, vendors, products, orders, categories, staff, settings,
// analytics, services, audit, support, finance). RolePermissions maps each
// staff role to its default grant; the super_admin entry is always the full
// catalog. Platform roles carry no static defaults.
//
// # Modules
//
// AdminModule names the functional areas of the staff console. A module is
// visible to anyone holding any permission in ModulePermissions(module).
//
// Everything in this package is immutable data plus pure lookups; accessors
// return copies so callers cannot mutate the catalog.
package catalog
