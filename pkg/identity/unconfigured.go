package identity

import (
	"context"

	"github.com/vendora/gatekeeper/pkg/session"
)

// UnconfiguredProvider stands in when provider credentials are absent. The
// service still boots and serves public routes; every auth flow reports the
// unconfigured condition as a typed error instead of a crash.
type UnconfiguredProvider struct{}

// NewUnconfiguredProvider creates the stand-in provider.
func NewUnconfiguredProvider() *UnconfiguredProvider {
	return &UnconfiguredProvider{}
}

func (p *UnconfiguredProvider) CurrentSession(ctx context.Context) (*session.Session, error) {
	return nil, nil
}

func (p *UnconfiguredProvider) CurrentUserID(ctx context.Context) (string, error) {
	return "", nil
}

func (p *UnconfiguredProvider) OnSessionChange(fn func(ChangeEvent)) func() {
	return func() {}
}

func (p *UnconfiguredProvider) SignIn(ctx context.Context, creds Credentials) error {
	return p.err(OpSignIn)
}

func (p *UnconfiguredProvider) SignUp(ctx context.Context, params SignUpParams) error {
	return p.err(OpSignUp)
}

func (p *UnconfiguredProvider) SignInWithOAuth(ctx context.Context) (string, error) {
	return "", p.err(OpOAuth)
}

func (p *UnconfiguredProvider) CompleteOAuth(ctx context.Context, code, state string) error {
	return p.err(OpOAuth)
}

func (p *UnconfiguredProvider) SignOut(ctx context.Context) error {
	return p.err(OpSignOut)
}

func (p *UnconfiguredProvider) ResetPassword(ctx context.Context, email string) error {
	return p.err(OpPasswordReset)
}

func (p *UnconfiguredProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	return p.err(OpPasswordUpdate)
}

func (p *UnconfiguredProvider) RefreshSession(ctx context.Context) (*session.Session, error) {
	return nil, p.err(OpRefresh)
}

func (p *UnconfiguredProvider) err(op Op) *AuthError {
	return NewAuthError(op, "identity provider credentials are not configured", "", ErrUnconfigured)
}

var _ Provider = (*UnconfiguredProvider)(nil)
