package api

import (
	"net/http"

	"github.com/vendora/gatekeeper/pkg/access"
	"github.com/vendora/gatekeeper/pkg/authstate"
	"github.com/vendora/gatekeeper/pkg/catalog"
	"github.com/vendora/gatekeeper/pkg/httputil"
	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/routes"
)

type identityResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Role         catalog.Role         `json:"role"`
	Permissions  []catalog.Permission `json:"permissions"`
	IsAdmin      bool                 `json:"is_admin"`
	IsSuperAdmin bool                 `json:"is_super_admin"`
}

type snapshotResponse struct {
	Phase         string                  `json:"phase"`
	Settled       bool                    `json:"settled"`
	Loading       bool                    `json:"loading"`
	Error         string                  `json:"error,omitempty"`
	Identity      *identityResponse       `json:"identity,omitempty"`
	Profile       *identity.Profile       `json:"profile,omitempty"`
	VendorProfile *identity.VendorProfile `json:"vendor_profile,omitempty"`
	StaffProfile  *identity.StaffProfile  `json:"staff_profile,omitempty"`
}

func (s *Server) snapshotResponse() snapshotResponse {
	snap := s.state.Snapshot()
	resp := snapshotResponse{
		Phase:         snap.Phase.String(),
		Settled:       snap.Phase.Terminal(),
		Loading:       snap.Loading,
		Profile:       snap.Profile,
		VendorProfile: snap.VendorProfile,
		StaffProfile:  snap.StaffProfile,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if snap.Identity != nil {
		resp.Identity = &identityResponse{
			ID:           snap.Identity.ID,
			Email:        snap.Identity.Email,
			Role:         snap.Identity.Role,
			Permissions:  snap.Identity.Permissions,
			IsAdmin:      snap.Identity.IsAdmin,
			IsSuperAdmin: snap.Identity.IsSuperAdmin,
		}
	}
	return resp
}

// me handles GET /me
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.snapshotResponse())
}

// myPermissions handles GET /me/permissions
func (s *Server) myPermissions(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	perms := []catalog.Permission{}
	if snap.Identity != nil {
		perms = snap.Identity.Permissions
	}
	httputil.WriteSuccess(w, map[string]interface{}{"permissions": perms})
}

// myModules handles GET /me/modules
func (s *Server) myModules(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	accessible := []catalog.AdminModule{}
	for _, module := range catalog.AllModules() {
		if access.IdentityCanAccessModule(snap.Identity, module) {
			accessible = append(accessible, module)
		}
	}
	httputil.WriteSuccess(w, map[string]interface{}{"modules": accessible})
}

// routeDecision handles GET /access/route
func (s *Server) routeDecision(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		httputil.WriteBadRequest(w, "path is required")
		return
	}
	decision := routes.CheckAccess(path, s.state.Snapshot().Role(), s.routeCfg)
	httputil.WriteSuccess(w, map[string]interface{}{
		"allowed":  decision.Allowed,
		"redirect": decision.Redirect,
		"reason":   string(decision.Reason),
	})
}

// evaluate handles POST /access/evaluate
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Permissions []catalog.Permission `json:"permissions"`
		Mode        string               `json:"mode"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Permissions) == 0 {
		httputil.WriteBadRequest(w, "permissions are required")
		return
	}

	ident := s.state.Snapshot().Identity
	var allowed bool
	switch req.Mode {
	case "", "any":
		allowed = access.HasAnyPermission(ident, req.Permissions)
	case "all":
		allowed = access.HasAllPermissions(ident, req.Permissions)
	default:
		httputil.WriteBadRequest(w, "mode must be any or all")
		return
	}
	httputil.WriteSuccess(w, map[string]bool{"allowed": allowed})
}

var _ AuthState = (*authstate.Store)(nil)
