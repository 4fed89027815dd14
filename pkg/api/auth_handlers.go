package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vendora/gatekeeper/pkg/catalog"
	"github.com/vendora/gatekeeper/pkg/httputil"
	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/session"
)

// signIn handles POST /auth/login
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	if err := s.state.SignIn(r.Context(), identity.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteSuccess(w, s.snapshotResponse())
}

// signUp handles POST /auth/signup
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	role := catalog.Role(req.Role)
	if role == "" {
		role = catalog.RoleCustomer
	}
	if !catalog.IsValidRole(role) {
		httputil.WriteBadRequest(w, "unknown role: "+req.Role)
		return
	}

	params := identity.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	}
	if err := s.state.SignUp(r.Context(), params); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"email": req.Email})
}

// oauthStart handles GET /auth/oauth/start
func (s *Server) oauthStart(w http.ResponseWriter, r *http.Request) {
	url, err := s.state.SignInWithOAuth(r.Context())
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"auth_url": url})
}

// oauthCallback handles GET /auth/callback
func (s *Server) oauthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		httputil.WriteBadRequest(w, "code and state are required")
		return
	}
	if err := s.state.CompleteOAuth(r.Context(), code, state); err != nil {
		s.writeAuthError(w, err)
		return
	}
	// Resume the originally requested path when the login redirect carried
	// one. Only local paths are honored.
	target := httputil.ParseQueryString(r, "redirect", s.routeCfg.AfterLoginPath)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = s.routeCfg.AfterLoginPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// signOut handles POST /auth/logout
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.state.SignOut(r.Context()); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// resetPassword handles POST /auth/reset-password
func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if err := s.state.ResetPassword(r.Context(), req.Email); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// updatePassword handles POST /auth/update-password
func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}
	if err := s.state.UpdatePassword(r.Context(), req.Password); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// refresh handles POST /auth/refresh
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.state.RefreshSession(r.Context()); err != nil {
		s.writeAuthError(w, err)
		return
	}
	httputil.WriteSuccess(w, s.sessionStateResponse())
}

// sessionState handles GET /auth/session
func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.sessionStateResponse())
}

// clearError handles DELETE /auth/error
func (s *Server) clearError(w http.ResponseWriter, r *http.Request) {
	s.state.ClearError()
	httputil.WriteNoContent(w)
}

type sessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	ExpiresAt     int64 `json:"expires_at,omitempty"`
	ExpiresIn     int64 `json:"expires_in"`
	Expired       bool  `json:"expired"`
	ExpiringSoon  bool  `json:"expiring_soon"`
}

func (s *Server) sessionStateResponse() sessionResponse {
	state, ok := s.state.SessionState()
	if !ok {
		return sessionResponse{}
	}
	return sessionResponse{
		Authenticated: true,
		ExpiresAt:     state.ExpiresAt.Unix(),
		ExpiresIn:     state.ExpiresIn,
		Expired:       state.Expired,
		ExpiringSoon:  state.ExpiringSoon,
	}
}

// writeAuthError maps typed auth failures onto HTTP statuses.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrUnconfigured):
		httputil.WriteServiceUnavailable(w, "identity provider is not configured")
	case errors.Is(err, session.ErrNoSession):
		httputil.WriteUnauthorized(w, "no active session")
	case identity.IsOp(err, identity.OpSignIn),
		identity.IsOp(err, identity.OpRefresh),
		identity.IsOp(err, identity.OpPasswordUpdate):
		httputil.WriteUnauthorized(w, err.Error())
	default:
		httputil.WriteBadRequest(w, err.Error())
	}
}
