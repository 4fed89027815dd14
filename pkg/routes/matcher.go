package routes

import (
	"net/url"
	"strings"

	"github.com/vendora/gatekeeper/pkg/catalog"
)

// Reason explains a deny decision.
type Reason string

const (
	ReasonAlreadyAuthenticated Reason = "already_authenticated"
	ReasonUnauthenticated      Reason = "unauthenticated"
	ReasonUnauthorized         Reason = "unauthorized"
)

// Decision is the outcome of a route access check.
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason, redirect string) Decision {
	return Decision{Redirect: redirect, Reason: reason}
}

// normalizePath strips one trailing slash and maps the empty path to "/".
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p != "/" && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	if p == "" {
		return "/"
	}
	return p
}

// MatchPath reports whether path matches a single pattern. A pattern
// ending in "/*" matches its prefix and everything nested beneath it, so
// "/admin/*" matches both "/admin" and "/admin/users/42". Any other
// pattern must match exactly after trailing-slash normalization.
func MatchPath(path, pattern string) bool {
	np := normalizePath(path)
	if strings.HasSuffix(pattern, "/*") {
		prefix := normalizePath(strings.TrimSuffix(pattern, "/*"))
		if prefix == "/" {
			return true
		}
		return np == prefix || strings.HasPrefix(np, prefix+"/")
	}
	return np == normalizePath(pattern)
}

// MatchAnyPath reports whether path matches any pattern in the list.
func MatchAnyPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if MatchPath(path, pattern) {
			return true
		}
	}
	return false
}

// loginRedirect builds the login target carrying the originally requested
// path, so navigation can resume after authentication.
func loginRedirect(loginPath, requested string) string {
	return loginPath + "?redirect=" + url.QueryEscape(requested)
}

// CheckAccess decides whether a principal with the given role may visit
// path under cfg. An empty role means unauthenticated. The bucket
// precedence below is load-bearing: each later step assumes the earlier
// ones did not match.
//
//  1. Public paths allow anyone, except that an authenticated visitor on
//     an auth-entry path (and not on a callback path) is bounced to the
//     after-login target.
//  2. No role at this point means unauthenticated: redirect to login with
//     the requested path as the redirect parameter.
//  3. Super-admin paths require super_admin exactly.
//  4. Admin paths require an admin-tier staff role.
//  5. Vendor paths accept the vendor role or any admin-tier role.
//  6. Custom rules deny when matched without membership; an unmatched rule
//     falls through rather than short-circuiting.
//  7. Protected paths allow any authenticated role.
//  8. Anything else is allowed. Authenticated principals reaching an
//     unclassified path pass: deliberate fail-open, asserted in tests so
//     nobody inverts it by accident.
func CheckAccess(path string, role catalog.Role, cfg Config) Decision {
	if MatchAnyPath(path, cfg.Public) {
		if role != "" && MatchAnyPath(path, cfg.AuthEntry) && !MatchAnyPath(path, cfg.Callback) {
			return deny(ReasonAlreadyAuthenticated, cfg.AfterLoginPath)
		}
		return allow()
	}

	if role == "" {
		return deny(ReasonUnauthenticated, loginRedirect(cfg.LoginPath, path))
	}

	if MatchAnyPath(path, cfg.SuperAdmin) {
		if catalog.IsSuperAdmin(role) {
			return allow()
		}
		return deny(ReasonUnauthorized, cfg.UnauthorizedPath)
	}

	if MatchAnyPath(path, cfg.Admin) {
		if catalog.IsAdminTier(role) {
			return allow()
		}
		return deny(ReasonUnauthorized, cfg.UnauthorizedPath)
	}

	if MatchAnyPath(path, cfg.Vendor) {
		if catalog.IsVendor(role) || catalog.IsAdminTier(role) {
			return allow()
		}
		return deny(ReasonUnauthorized, cfg.UnauthorizedPath)
	}

	for _, rule := range cfg.Custom {
		if !MatchAnyPath(path, rule.Patterns) {
			continue
		}
		for _, allowed := range rule.Roles {
			if role == allowed {
				return allow()
			}
		}
		return deny(ReasonUnauthorized, cfg.UnauthorizedPath)
	}

	if MatchAnyPath(path, cfg.Protected) {
		return allow()
	}

	return allow()
}
