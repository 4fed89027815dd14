package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfigValidate(t *testing.T) {
	valid := ProviderConfig{
		IssuerURL:    "https://issuer.vendora.test",
		ClientID:     "gatekeeper",
		ClientSecret: "secret",
		RedirectURL:  "https://app.vendora.test/auth/callback",
		Scopes:       []string{"openid", "profile", "email"},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name         string
		mutate       func(*ProviderConfig)
		unconfigured bool
	}{
		{"missing issuer", func(c *ProviderConfig) { c.IssuerURL = "" }, true},
		{"missing client id", func(c *ProviderConfig) { c.ClientID = "" }, true},
		{"missing client secret", func(c *ProviderConfig) { c.ClientSecret = "" }, true},
		{"missing redirect", func(c *ProviderConfig) { c.RedirectURL = "" }, false},
		{"missing openid scope", func(c *ProviderConfig) { c.Scopes = []string{"profile"} }, false},
		{"no scopes", func(c *ProviderConfig) { c.Scopes = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tt.unconfigured {
				assert.ErrorIs(t, err, ErrUnconfigured)
			} else {
				assert.NotErrorIs(t, err, ErrUnconfigured)
			}
		})
	}
}

// fakeIssuer serves just enough OIDC discovery plus a token and userinfo
// endpoint for exercising the adapter without a real identity provider.
type fakeIssuer struct {
	srv        *httptest.Server
	subject    string
	tokenFails bool
	grants     []string
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	f := &fakeIssuer{subject: "user-42"}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/authorize",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
			"jwks_uri":               f.srv.URL + "/keys",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.grants = append(f.grants, r.Form.Get("grant_type"))
		if f.tokenFails {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "wrong password",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "access-" + r.Form.Get("grant_type"),
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sub": f.subject})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"keys": []interface{}{}})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) provider(t *testing.T) *OIDCProvider {
	t.Helper()
	p, err := NewOIDCProvider(context.Background(), ProviderConfig{
		IssuerURL:    f.srv.URL,
		ClientID:     "gatekeeper",
		ClientSecret: "secret",
		RedirectURL:  f.srv.URL + "/callback",
		Scopes:       []string{"openid", "profile"},
		HTTPClient:   f.srv.Client(),
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestSignInEstablishesSessionAndEmits(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	var events []ChangeEvent
	unsub := p.OnSessionChange(func(ev ChangeEvent) { events = append(events, ev) })
	defer unsub()

	err := p.SignIn(context.Background(), Credentials{Email: "u@vendora.test", Password: "pw"})
	require.NoError(t, err)

	sess, err := p.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "access-password", sess.AccessToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)
	assert.NotZero(t, sess.ExpiresAt)

	require.Len(t, events, 1)
	assert.Equal(t, EventSignedIn, events[0].Type)
	assert.Equal(t, "user-42", events[0].UserID)
	require.NotNil(t, events[0].Session)
}

func TestSignInFailureIsTyped(t *testing.T) {
	issuer := newFakeIssuer(t)
	issuer.tokenFails = true
	p := issuer.provider(t)

	err := p.SignIn(context.Background(), Credentials{Email: "u@vendora.test", Password: "nope"})
	require.Error(t, err)
	assert.True(t, IsOp(err, OpSignIn))

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid_grant", ae.Code)
	assert.Equal(t, "wrong password", ae.Message)

	sess, _ := p.CurrentSession(context.Background())
	assert.Nil(t, sess)
}

func TestOAuthRoundTrip(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	authURL, err := p.SignInWithOAuth(context.Background())
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	assert.True(t, strings.HasPrefix(authURL, issuer.srv.URL+"/authorize"))

	require.NoError(t, p.CompleteOAuth(context.Background(), "auth-code", state))

	sess, _ := p.CurrentSession(context.Background())
	require.NotNil(t, sess)
	assert.Equal(t, "access-authorization_code", sess.AccessToken)

	// A state nonce is single-use.
	err = p.CompleteOAuth(context.Background(), "auth-code", state)
	assert.True(t, IsOp(err, OpOAuth))
}

func TestCompleteOAuthRejectsUnknownState(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	err := p.CompleteOAuth(context.Background(), "code", "forged-state")
	require.Error(t, err)
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid_state", ae.Code)
}

func TestSignOutClearsEverything(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)
	require.NoError(t, p.SignIn(context.Background(), Credentials{Email: "u@vendora.test", Password: "pw"}))

	var events []ChangeEvent
	unsub := p.OnSessionChange(func(ev ChangeEvent) { events = append(events, ev) })
	defer unsub()

	require.NoError(t, p.SignOut(context.Background()))

	sess, _ := p.CurrentSession(context.Background())
	assert.Nil(t, sess)
	require.Len(t, events, 1)
	assert.Equal(t, EventSignedOut, events[0].Type)
	assert.Nil(t, events[0].Session)
}

func TestRefreshSessionEmitsAndReplaces(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)
	require.NoError(t, p.SignIn(context.Background(), Credentials{Email: "u@vendora.test", Password: "pw"}))

	var events []ChangeEvent
	unsub := p.OnSessionChange(func(ev ChangeEvent) { events = append(events, ev) })
	defer unsub()

	fresh, err := p.RefreshSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-refresh_token", fresh.AccessToken)

	require.Len(t, events, 1)
	assert.Equal(t, EventTokenRefreshed, events[0].Type)
	assert.Equal(t, "user-42", events[0].UserID)
}

func TestRefreshWithoutSession(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	_, err := p.RefreshSession(context.Background())
	assert.True(t, IsOp(err, OpRefresh))
}

func TestUnsupportedFlowsAreTyped(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	err := p.SignUp(context.Background(), SignUpParams{Email: "new@vendora.test"})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "unsupported", ae.Code)

	err = p.ResetPassword(context.Background(), "new@vendora.test")
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, OpPasswordReset, ae.Op)
}

func TestRestEndpointFlows(t *testing.T) {
	issuer := newFakeIssuer(t)

	var signups, resets int
	rest := http.NewServeMux()
	rest.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		signups++
		w.WriteHeader(http.StatusCreated)
	})
	rest.HandleFunc("/recover", func(w http.ResponseWriter, r *http.Request) {
		resets++
	})
	restSrv := httptest.NewServer(rest)
	defer restSrv.Close()

	p, err := NewOIDCProvider(context.Background(), ProviderConfig{
		IssuerURL:             issuer.srv.URL,
		ClientID:              "gatekeeper",
		ClientSecret:          "secret",
		RedirectURL:           issuer.srv.URL + "/callback",
		Scopes:                []string{"openid"},
		HTTPClient:            issuer.srv.Client(),
		SignUpEndpoint:        restSrv.URL + "/signup",
		PasswordResetEndpoint: restSrv.URL + "/recover",
	})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.SignUp(context.Background(), SignUpParams{Email: "new@vendora.test", Password: "pw"}))
	require.NoError(t, p.ResetPassword(context.Background(), "new@vendora.test"))
	assert.Equal(t, 1, signups)
	assert.Equal(t, 1, resets)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	issuer := newFakeIssuer(t)
	p := issuer.provider(t)

	var calls int
	unsub := p.OnSessionChange(func(ChangeEvent) { calls++ })
	unsub()

	require.NoError(t, p.SignIn(context.Background(), Credentials{Email: "u@vendora.test", Password: "pw"}))
	assert.Zero(t, calls)
}
