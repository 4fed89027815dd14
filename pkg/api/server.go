package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vendora/gatekeeper/pkg/authstate"
	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/observability"
	"github.com/vendora/gatekeeper/pkg/routes"
	"github.com/vendora/gatekeeper/pkg/session"
)

// AuthState is the slice of the state store the API consumes. Satisfied by
// *authstate.Store.
type AuthState interface {
	Snapshot() authstate.Snapshot
	SessionState() (session.State, bool)
	SignIn(ctx context.Context, creds identity.Credentials) error
	SignUp(ctx context.Context, params identity.SignUpParams) error
	SignInWithOAuth(ctx context.Context) (string, error)
	CompleteOAuth(ctx context.Context, code, state string) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	RefreshSession(ctx context.Context) error
	ClearError()
}

// Server exposes the engine over HTTP: credential and OAuth flows, session
// state, and access-decision queries.
type Server struct {
	state    AuthState
	routeCfg routes.Config
	log      *observability.Logger
	router   *mux.Router
}

// NewServer creates the API server. The route config is the same one the
// navigation guard enforces, so decision queries answer exactly what the
// guard would do.
func NewServer(state AuthState, routeCfg routes.Config, log *observability.Logger) *Server {
	if log == nil {
		log = observability.NopLogger()
	}
	s := &Server{
		state:    state,
		routeCfg: routeCfg,
		log:      log.Named("api"),
		router:   mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/auth/login", s.signIn).Methods("POST")
	s.router.HandleFunc("/auth/signup", s.signUp).Methods("POST")
	s.router.HandleFunc("/auth/oauth/start", s.oauthStart).Methods("GET")
	s.router.HandleFunc("/auth/callback", s.oauthCallback).Methods("GET")
	s.router.HandleFunc("/auth/logout", s.signOut).Methods("POST")
	s.router.HandleFunc("/auth/reset-password", s.resetPassword).Methods("POST")
	s.router.HandleFunc("/auth/update-password", s.updatePassword).Methods("POST")
	s.router.HandleFunc("/auth/refresh", s.refresh).Methods("POST")
	s.router.HandleFunc("/auth/session", s.sessionState).Methods("GET")
	s.router.HandleFunc("/auth/error", s.clearError).Methods("DELETE")

	s.router.HandleFunc("/me", s.me).Methods("GET")
	s.router.HandleFunc("/me/permissions", s.myPermissions).Methods("GET")
	s.router.HandleFunc("/me/modules", s.myModules).Methods("GET")

	s.router.HandleFunc("/access/route", s.routeDecision).Methods("GET")
	s.router.HandleFunc("/access/evaluate", s.evaluate).Methods("POST")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
