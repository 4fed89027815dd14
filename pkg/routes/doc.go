// Package routes maps navigable paths to access decisions.
//
// A Config classifies a surface's paths into buckets (public, protected,
// admin, vendor, super-admin, custom) using wildcard-suffixed path
// patterns, and CheckAccess evaluates the buckets in a fixed precedence
// order. The function is pure: it consults only its arguments, so the same
// inputs always yield the same Decision.
//
// Three surfaces ship with built-in configs: GeneralConfig for the
// storefront, AdminSurfaceConfig for the staff console, and
// VendorSurfaceConfig for the vendor portal. Merge overlays caller
// overrides onto any of them field by field.
package routes
