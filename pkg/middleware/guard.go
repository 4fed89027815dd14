package middleware

import (
	"net/http"

	"github.com/vendora/gatekeeper/pkg/access"
	"github.com/vendora/gatekeeper/pkg/authstate"
	"github.com/vendora/gatekeeper/pkg/catalog"
	"github.com/vendora/gatekeeper/pkg/contextkeys"
	"github.com/vendora/gatekeeper/pkg/httputil"
	"github.com/vendora/gatekeeper/pkg/observability"
	"github.com/vendora/gatekeeper/pkg/routes"
)

// SnapshotSource yields the current auth state. Satisfied by
// *authstate.Store.
type SnapshotSource interface {
	Snapshot() authstate.Snapshot
}

// Guard is the navigation guard middleware. It classifies every request
// path through the route matcher and either passes the request on with the
// caller's identity in context, or answers with the decision's redirect.
type Guard struct {
	source SnapshotSource
	cfg    routes.Config
	log    *observability.Logger
}

// NewGuard creates a route guard over source with the given route config.
func NewGuard(source SnapshotSource, cfg routes.Config, log *observability.Logger) *Guard {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Guard{source: source, cfg: cfg, log: log.Named("guard")}
}

// Handler wraps an HTTP handler with route access checks.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := g.source.Snapshot()
		decision := routes.CheckAccess(r.URL.Path, snap.Role(), g.cfg)
		if !decision.Allowed {
			g.deny(w, r, snap, decision)
			return
		}
		ctx := r.Context()
		if snap.Identity != nil {
			ctx = contextkeys.WithIdentity(ctx, snap.Identity)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, snap authstate.Snapshot, decision routes.Decision) {
	g.log.Info("route access denied",
		"path", r.URL.Path,
		"role", string(snap.Role()),
		"reason", string(decision.Reason))

	if decision.Redirect != "" {
		http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
		return
	}
	httputil.WriteForbidden(w, "access denied")
}

// IdentityFrom extracts the caller's identity placed by the guard, or nil.
func IdentityFrom(r *http.Request) *access.Identity {
	ident, _ := r.Context().Value(contextkeys.IdentityKey).(*access.Identity)
	return ident
}

// RequirePermission gates a handler on a single permission. The guard has
// already classified the route; this narrows individual endpoints further.
func RequirePermission(perm catalog.Permission, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !access.HasPermission(IdentityFrom(r), perm) {
			httputil.WriteForbidden(w, "missing permission "+string(perm))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModule gates a handler on admin-module access.
func RequireModule(module catalog.AdminModule, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !access.IdentityCanAccessModule(IdentityFrom(r), module) {
			httputil.WriteForbidden(w, "module "+string(module)+" is not accessible")
			return
		}
		next.ServeHTTP(w, r)
	})
}
