package routes

import "github.com/vendora/gatekeeper/pkg/catalog"

// CustomRule binds a set of path patterns to an explicit role list.
type CustomRule struct {
	Patterns []string
	Roles    []catalog.Role
}

// Config classifies an application surface's paths into access buckets and
// names its redirect targets. Each surface owns a fully self-contained
// config; the only relationship between configs is the explicit Merge
// helper.
type Config struct {
	// Public paths need no authentication.
	Public []string
	// AuthEntry paths (login, signup) are public but bounce authenticated
	// visitors back to AfterLoginPath. Callback paths are exempt from the
	// bounce so OAuth round-trips can complete.
	AuthEntry []string
	Callback  []string

	// Protected paths need any authenticated role.
	Protected []string
	// Admin paths need an admin-tier staff role.
	Admin []string
	// Vendor paths need the vendor role or an admin-tier role.
	Vendor []string
	// SuperAdmin paths need the super_admin role exactly.
	SuperAdmin []string
	// Custom rules each carry their own role list.
	Custom []CustomRule

	LoginPath        string
	AfterLoginPath   string
	UnauthorizedPath string
}

// GeneralConfig returns the route classification for the storefront
// surface.
func GeneralConfig() Config {
	return Config{
		Public: []string{
			"/",
			"/auth/*",
			"/products/*",
			"/categories/*",
			"/vendors/*",
			"/search",
			"/about",
			"/contact",
		},
		AuthEntry: []string{
			"/auth/login",
			"/auth/signup",
			"/auth/reset-password",
		},
		Callback: []string{
			"/auth/callback",
		},
		Protected: []string{
			"/dashboard/*",
			"/account/*",
			"/orders/*",
			"/checkout/*",
			"/wishlist/*",
		},
		Vendor: []string{
			"/vendor/*",
		},
		LoginPath:        "/auth/login",
		AfterLoginPath:   "/dashboard",
		UnauthorizedPath: "/unauthorized",
	}
}

// AdminSurfaceConfig returns the route classification for the staff
// console surface.
func AdminSurfaceConfig() Config {
	return Config{
		Public: []string{
			"/admin/login",
			"/admin/auth/*",
		},
		AuthEntry: []string{
			"/admin/login",
		},
		Callback: []string{
			"/admin/auth/callback",
		},
		Admin: []string{
			"/admin/*",
		},
		SuperAdmin: []string{
			"/admin/staff/*",
			"/admin/settings/*",
		},
		LoginPath:        "/admin/login",
		AfterLoginPath:   "/admin",
		UnauthorizedPath: "/admin/unauthorized",
	}
}

// VendorSurfaceConfig returns the route classification for the vendor
// portal surface.
func VendorSurfaceConfig() Config {
	return Config{
		Public: []string{
			"/vendor/login",
			"/vendor/signup",
			"/vendor/auth/*",
		},
		AuthEntry: []string{
			"/vendor/login",
			"/vendor/signup",
		},
		Callback: []string{
			"/vendor/auth/callback",
		},
		Vendor: []string{
			"/vendor/*",
		},
		LoginPath:        "/vendor/login",
		AfterLoginPath:   "/vendor/dashboard",
		UnauthorizedPath: "/vendor/unauthorized",
	}
}

// PlatformConfig returns the serving config for a binary hosting the
// storefront and the staff console behind one listener. Unlike Merge,
// which overrides field by field, the bucket slices here are the union of
// both surfaces: the storefront's auth endpoints must stay publicly
// reachable or nobody could ever sign in to reach the admin paths.
func PlatformConfig() Config {
	out := GeneralConfig()
	admin := AdminSurfaceConfig()
	out.Public = append(out.Public, admin.Public...)
	out.AuthEntry = append(out.AuthEntry, admin.AuthEntry...)
	out.Callback = append(out.Callback, admin.Callback...)
	out.Admin = append(out.Admin, admin.Admin...)
	out.SuperAdmin = append(out.SuperAdmin, admin.SuperAdmin...)
	return out
}

// Merge overlays non-zero fields of override onto base, field by field.
// Empty slices and empty strings in override keep the base value; the
// result is a new Config and neither input is modified.
func Merge(base, override Config) Config {
	out := base
	if len(override.Public) > 0 {
		out.Public = override.Public
	}
	if len(override.AuthEntry) > 0 {
		out.AuthEntry = override.AuthEntry
	}
	if len(override.Callback) > 0 {
		out.Callback = override.Callback
	}
	if len(override.Protected) > 0 {
		out.Protected = override.Protected
	}
	if len(override.Admin) > 0 {
		out.Admin = override.Admin
	}
	if len(override.Vendor) > 0 {
		out.Vendor = override.Vendor
	}
	if len(override.SuperAdmin) > 0 {
		out.SuperAdmin = override.SuperAdmin
	}
	if len(override.Custom) > 0 {
		out.Custom = override.Custom
	}
	if override.LoginPath != "" {
		out.LoginPath = override.LoginPath
	}
	if override.AfterLoginPath != "" {
		out.AfterLoginPath = override.AfterLoginPath
	}
	if override.UnauthorizedPath != "" {
		out.UnauthorizedPath = override.UnauthorizedPath
	}
	return out
}
