package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/vendora/gatekeeper/pkg/session"
)

// stateTTL bounds how long an issued OAuth state nonce stays redeemable.
const stateTTL = 10 * time.Minute

// ProviderConfig configures the OIDC-backed identity provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Optional provider REST endpoints for the account-management flows
	// OIDC itself does not standardize. A flow whose endpoint is unset
	// fails with a typed "unsupported" error instead of guessing.
	SignUpEndpoint         string
	PasswordResetEndpoint  string
	PasswordUpdateEndpoint string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Validate checks the configuration. Missing credentials surface as
// ErrUnconfigured so callers can report a distinct unconfigured state.
func (c ProviderConfig) Validate() error {
	if c.IssuerURL == "" || c.ClientID == "" || c.ClientSecret == "" {
		return ErrUnconfigured
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("identity: redirect URL is required")
	}
	for _, s := range c.Scopes {
		if s == oidc.ScopeOpenID {
			return nil
		}
	}
	return fmt.Errorf("identity: %q scope is required", oidc.ScopeOpenID)
}

// OIDCProvider implements Provider against an OpenID Connect issuer. One
// instance serves the whole process; it is constructor-injected into the
// auth state store rather than held as a package global, and Close gives
// tests an explicit teardown.
type OIDCProvider struct {
	cfg      ProviderConfig
	rp       *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config

	mu      sync.Mutex
	current *session.Session
	userID  string
	states  map[string]time.Time
	subs    map[int]func(ChangeEvent)
	nextSub int
	closed  bool

	// dispatchMu serializes callback delivery so change events reach
	// subscribers in the order they occurred.
	dispatchMu sync.Mutex
}

// NewOIDCProvider discovers the issuer and builds a provider.
func NewOIDCProvider(ctx context.Context, cfg ProviderConfig) (*OIDCProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rp, err := oidc.NewProvider(clientContext(ctx, cfg.HTTPClient), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC issuer %s: %w", cfg.IssuerURL, err)
	}

	return &OIDCProvider{
		cfg:      cfg,
		rp:       rp,
		verifier: rp.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     rp.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
		states: make(map[string]time.Time),
		subs:   make(map[int]func(ChangeEvent)),
	}, nil
}

// CurrentSession returns a copy of the active session, or nil when signed
// out.
func (p *OIDCProvider) CurrentSession(ctx context.Context) (*session.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, nil
	}
	copied := *p.current
	return &copied, nil
}

// CurrentUserID returns the subject of the active session, or empty when
// signed out.
func (p *OIDCProvider) CurrentUserID(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID, nil
}

// OnSessionChange registers a change callback. Callbacks fire in event
// order; the returned function unsubscribes.
func (p *OIDCProvider) OnSessionChange(fn func(ChangeEvent)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SignIn authenticates an email/password pair through the resource-owner
// grant and establishes a session.
func (p *OIDCProvider) SignIn(ctx context.Context, creds Credentials) error {
	tok, err := p.oauth.PasswordCredentialsToken(clientContext(ctx, p.cfg.HTTPClient), creds.Email, creds.Password)
	if err != nil {
		return oauthError(OpSignIn, "invalid credentials or provider failure", err)
	}
	return p.establish(ctx, EventSignedIn, tok)
}

// SignUp registers a new account through the provider's registration
// endpoint. The caller signs in afterwards; no session is created here.
func (p *OIDCProvider) SignUp(ctx context.Context, params SignUpParams) error {
	if p.cfg.SignUpEndpoint == "" {
		return NewAuthError(OpSignUp, "provider exposes no sign-up endpoint", "unsupported", nil)
	}
	payload := map[string]string{
		"email":     params.Email,
		"password":  params.Password,
		"full_name": params.FullName,
		"role":      string(params.Role),
	}
	if err := p.postJSON(ctx, OpSignUp, p.cfg.SignUpEndpoint, payload, ""); err != nil {
		return err
	}
	return nil
}

// SignInWithOAuth issues a state nonce and returns the authorization URL
// to visit. CompleteOAuth redeems the code delivered to the redirect URL.
func (p *OIDCProvider) SignInWithOAuth(ctx context.Context) (string, error) {
	state := uuid.NewString()

	p.mu.Lock()
	now := time.Now()
	for s, issued := range p.states {
		if now.Sub(issued) > stateTTL {
			delete(p.states, s)
		}
	}
	p.states[state] = now
	p.mu.Unlock()

	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// CompleteOAuth finishes an OAuth flow: the state must match an
// outstanding nonce, and the code is exchanged for a session.
func (p *OIDCProvider) CompleteOAuth(ctx context.Context, code, state string) error {
	p.mu.Lock()
	issued, ok := p.states[state]
	delete(p.states, state)
	p.mu.Unlock()
	if !ok || time.Since(issued) > stateTTL {
		return NewAuthError(OpOAuth, "unknown or expired state", "invalid_state", nil)
	}

	tok, err := p.oauth.Exchange(clientContext(ctx, p.cfg.HTTPClient), code)
	if err != nil {
		return oauthError(OpOAuth, "code exchange failed", err)
	}
	return p.establish(ctx, EventSignedIn, tok)
}

// SignOut destroys the session and announces it. The provider keeps no
// partial state: identity, tokens, and nonces all go at once.
func (p *OIDCProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.userID = ""
	p.states = make(map[string]time.Time)
	p.mu.Unlock()

	p.emit(ChangeEvent{Type: EventSignedOut})
	return nil
}

// ResetPassword asks the provider to start a password recovery flow.
func (p *OIDCProvider) ResetPassword(ctx context.Context, email string) error {
	if p.cfg.PasswordResetEndpoint == "" {
		return NewAuthError(OpPasswordReset, "provider exposes no password reset endpoint", "unsupported", nil)
	}
	return p.postJSON(ctx, OpPasswordReset, p.cfg.PasswordResetEndpoint, map[string]string{"email": email}, "")
}

// UpdatePassword changes the signed-in account's password.
func (p *OIDCProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	if p.cfg.PasswordUpdateEndpoint == "" {
		return NewAuthError(OpPasswordUpdate, "provider exposes no password update endpoint", "unsupported", nil)
	}

	p.mu.Lock()
	var token string
	if p.current != nil {
		token = p.current.AccessToken
	}
	userID := p.userID
	sess := p.current
	p.mu.Unlock()
	if token == "" {
		return NewAuthError(OpPasswordUpdate, "no active session", "not_authenticated", nil)
	}

	if err := p.postJSON(ctx, OpPasswordUpdate, p.cfg.PasswordUpdateEndpoint, map[string]string{"password": newPassword}, token); err != nil {
		return err
	}

	copied := *sess
	p.emit(ChangeEvent{Type: EventUserUpdated, Session: &copied, UserID: userID})
	return nil
}

// RefreshSession exchanges the refresh token for a fresh credential pair.
func (p *OIDCProvider) RefreshSession(ctx context.Context) (*session.Session, error) {
	p.mu.Lock()
	var refreshToken string
	if p.current != nil {
		refreshToken = p.current.RefreshToken
	}
	userID := p.userID
	p.mu.Unlock()
	if refreshToken == "" {
		return nil, NewAuthError(OpRefresh, "no refresh token", "not_authenticated", nil)
	}

	src := p.oauth.TokenSource(clientContext(ctx, p.cfg.HTTPClient), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, oauthError(OpRefresh, "token refresh failed", err)
	}

	fresh := sessionFromToken(tok)
	p.mu.Lock()
	p.current = fresh
	p.mu.Unlock()

	copied := *fresh
	p.emit(ChangeEvent{Type: EventTokenRefreshed, Session: &copied, UserID: userID})
	out := *fresh
	return &out, nil
}

// Close tears the provider down: subscribers, session, and nonces are
// dropped without emitting events. Intended for shutdown and test
// isolation; a closed provider is not reused.
func (p *OIDCProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.current = nil
	p.userID = ""
	p.subs = make(map[int]func(ChangeEvent))
	p.states = make(map[string]time.Time)
}

// establish stores the session derived from tok and announces it.
func (p *OIDCProvider) establish(ctx context.Context, ev ChangeEventType, tok *oauth2.Token) error {
	sess := sessionFromToken(tok)
	userID, err := p.subject(ctx, tok)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = sess
	p.userID = userID
	p.mu.Unlock()

	copied := *sess
	p.emit(ChangeEvent{Type: ev, Session: &copied, UserID: userID})
	return nil
}

// subject resolves the provider subject for a token, preferring the ID
// token and falling back to the userinfo endpoint.
func (p *OIDCProvider) subject(ctx context.Context, tok *oauth2.Token) (string, error) {
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		idToken, err := p.verifier.Verify(clientContext(ctx, p.cfg.HTTPClient), raw)
		if err != nil {
			return "", NewAuthError(OpOAuth, "ID token verification failed", "invalid_id_token", err)
		}
		return idToken.Subject, nil
	}

	info, err := p.rp.UserInfo(clientContext(ctx, p.cfg.HTTPClient), oauth2.StaticTokenSource(tok))
	if err != nil {
		return "", NewAuthError(OpOAuth, "userinfo lookup failed", "userinfo_failed", err)
	}
	return info.Subject, nil
}

// emit delivers ev to all subscribers in registration order. Delivery is
// serialized so a slow handler cannot reorder events behind a fast one.
func (p *OIDCProvider) emit(ev ChangeEvent) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(ChangeEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.subs[id])
	}
	p.mu.Unlock()

	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// postJSON posts a JSON payload to one of the provider's REST endpoints.
func (p *OIDCProvider) postJSON(ctx context.Context, op Op, endpoint string, payload interface{}, bearer string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewAuthError(op, "encode request", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return NewAuthError(op, "build request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	client := p.cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return NewAuthError(op, "provider request failed", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewAuthError(op, string(bytes.TrimSpace(msg)), fmt.Sprintf("http_%d", resp.StatusCode), nil)
	}
	return nil
}

// sessionFromToken maps an OAuth2 token to a session record.
func sessionFromToken(tok *oauth2.Token) *session.Session {
	s := &session.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		s.ExpiresAt = tok.Expiry.Unix()
	}
	return s
}

// oauthError wraps an oauth2 failure, lifting the provider's error code
// when the library exposes one.
func oauthError(op Op, message string, err error) *AuthError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorDescription
		if msg == "" {
			msg = message
		}
		return NewAuthError(op, msg, re.ErrorCode, err)
	}
	return NewAuthError(op, message, "", err)
}

// clientContext injects a custom HTTP client for oauth2/oidc calls.
func clientContext(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}
	return oidc.ClientContext(ctx, client)
}
