package identity

import (
	"context"

	"github.com/vendora/gatekeeper/pkg/catalog"
	"github.com/vendora/gatekeeper/pkg/session"
)

// ChangeEventType names a session lifecycle event.
type ChangeEventType string

const (
	EventInitialSession ChangeEventType = "INITIAL_SESSION"
	EventSignedIn       ChangeEventType = "SIGNED_IN"
	EventSignedOut      ChangeEventType = "SIGNED_OUT"
	EventTokenRefreshed ChangeEventType = "TOKEN_REFRESHED"
	EventUserUpdated    ChangeEventType = "USER_UPDATED"
)

// ChangeEvent announces a session change. Session is nil for sign-out.
type ChangeEvent struct {
	Type    ChangeEventType
	Session *session.Session
	// UserID is the provider's subject for the session, when known.
	UserID string
}

// Credentials are an email/password pair for first-party sign-in.
type Credentials struct {
	Email    string
	Password string
}

// SignUpParams describe a new account registration.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
	Role     catalog.Role
}

// Provider is the identity-provider contract the engine consumes.
// Implementations authenticate credentials, own token storage, and emit
// change events in delivery order. All methods return typed *AuthError
// values on failure.
type Provider interface {
	// CurrentSession returns the active session, or nil without error
	// when none exists.
	CurrentSession(ctx context.Context) (*session.Session, error)

	// CurrentUserID returns the provider subject of the active session,
	// or empty when signed out.
	CurrentUserID(ctx context.Context) (string, error)

	// OnSessionChange registers a callback invoked for every session
	// change, in delivery order. The returned function unsubscribes.
	OnSessionChange(fn func(ChangeEvent)) (unsubscribe func())

	SignIn(ctx context.Context, creds Credentials) error
	SignUp(ctx context.Context, params SignUpParams) error

	// SignInWithOAuth starts an OAuth flow and returns the authorization
	// URL the user must visit; CompleteOAuth finishes it with the
	// returned code and state.
	SignInWithOAuth(ctx context.Context) (authURL string, err error)
	CompleteOAuth(ctx context.Context, code, state string) error

	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error

	// RefreshSession exchanges the current session for a fresh one and
	// returns it. Satisfies session.Refresher.
	RefreshSession(ctx context.Context) (*session.Session, error)
}
