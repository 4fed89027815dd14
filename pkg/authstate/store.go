package authstate

import (
	"context"
	"sync"

	"github.com/vendora/gatekeeper/pkg/access"
	"github.com/vendora/gatekeeper/pkg/catalog"
	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/observability"
	"github.com/vendora/gatekeeper/pkg/routes"
	"github.com/vendora/gatekeeper/pkg/session"
)

// Invalidator drops cached profile entries for a subject. Satisfied by
// identity.CachingStore.
type Invalidator interface {
	Invalidate(ctx context.Context, profileID string)
}

// Snapshot is a point-in-time copy of the auth state. Every pointer refers
// to a private copy: callers can hold a snapshot for as long as they like
// without it shifting underneath them.
type Snapshot struct {
	Identity      *access.Identity
	Session       *session.Session
	Profile       *identity.Profile
	VendorProfile *identity.VendorProfile
	StaffProfile  *identity.StaffProfile
	Phase         Phase
	Loading       bool
	Err           error
}

// Role returns the resolved role, or empty when signed out.
func (s Snapshot) Role() catalog.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Store is the single authority for session, profile, and permission state.
// It subscribes to provider session events and re-runs the profile
// resolution chain for each one. Every run is stamped with a generation
// taken when its event arrives; a run that finishes after a newer event has
// bumped the generation is discarded wholesale, so a slow resolution can
// never clobber the state of a later sign-in.
type Store struct {
	provider identity.Provider
	profiles identity.ProfileStore
	monitor  *session.Monitor
	log      *observability.Logger
	metrics  *Metrics
	inv      Invalidator

	mu      sync.Mutex
	gen     uint64
	phase   Phase
	loading bool
	err     error
	ident   *access.Identity
	profile *identity.Profile
	vendor  *identity.VendorProfile
	staff   *identity.StaffProfile

	unsubscribe func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log *observability.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithMetrics sets the store metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithInvalidator wires a profile cache to be flushed for the affected
// subject before each resolution run, so a role change made elsewhere is
// picked up rather than served stale.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Store) { s.inv = inv }
}

// New builds a Store around a provider and a profile store. Loading starts
// true and resolves false once Start finishes its bootstrap.
func New(provider identity.Provider, profiles identity.ProfileStore, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		profiles: profiles,
		monitor:  session.NewMonitor(provider),
		log:      observability.NopLogger(),
		metrics:  NewMetrics(nil),
		phase:    PhaseIdle,
		loading:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("authstate")
	return s
}

// Monitor exposes the session monitor for expiry checks and refresh.
func (s *Store) Monitor() *session.Monitor { return s.monitor }

// SessionState reports the derived expiry state of the current session.
func (s *Store) SessionState() (session.State, bool) { return s.monitor.State() }

// Start subscribes to session changes and bootstraps from any session the
// provider already holds. A bootstrap failure is recorded but not fatal:
// the store comes up signed out with the error in its slot.
func (s *Store) Start(ctx context.Context) error {
	s.unsubscribe = s.provider.OnSessionChange(s.handleEvent)

	sess, err := s.provider.CurrentSession(ctx)
	if err != nil {
		initErr := identity.NewAuthError(identity.OpInit, "session bootstrap failed", "", err)
		s.mu.Lock()
		s.err = initErr
		s.loading = false
		s.phase = PhaseIdle
		s.mu.Unlock()
		s.log.WithError(err).Warn("session bootstrap failed, starting signed out")
		return nil
	}
	if sess == nil {
		s.mu.Lock()
		s.loading = false
		s.phase = PhaseIdle
		s.mu.Unlock()
		return nil
	}

	userID, err := s.provider.CurrentUserID(ctx)
	if err != nil || userID == "" {
		s.mu.Lock()
		s.loading = false
		s.phase = PhaseIdle
		s.mu.Unlock()
		s.log.Warn("session present but subject unknown, starting signed out")
		return nil
	}
	s.handleEvent(identity.ChangeEvent{Type: identity.EventInitialSession, Session: sess, UserID: userID})
	return nil
}

// Close unsubscribes from provider events.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// handleEvent runs the resolution chain for one session event. Called in
// delivery order by the provider; each invocation claims the next
// generation so overlapping runs settle in favor of the newest event.
func (s *Store) handleEvent(ev identity.ChangeEvent) {
	ctx := context.Background()

	s.mu.Lock()
	s.gen++
	gen := s.gen

	if ev.Type == identity.EventSignedOut || ev.Session == nil {
		s.resetLocked()
		s.mu.Unlock()
		s.monitor.Clear()
		s.log.Info("signed out, state cleared")
		return
	}

	s.phase = PhaseAuthenticating
	s.loading = true
	s.metrics.phase.Set(float64(PhaseAuthenticating))
	s.mu.Unlock()

	s.monitor.Set(ev.Session)
	if s.inv != nil && ev.UserID != "" {
		s.inv.Invalidate(ctx, ev.UserID)
	}
	s.resolve(ctx, gen, ev)
}

// resetLocked clears identity, profiles, error, and phase in one step.
// Callers hold s.mu.
func (s *Store) resetLocked() {
	s.phase = PhaseIdle
	s.loading = false
	s.err = nil
	s.ident = nil
	s.profile = nil
	s.vendor = nil
	s.staff = nil
	s.metrics.phase.Set(float64(PhaseIdle))
}

// resolve walks primary fetch, branch fetch, and identity construction for
// the generation gen, applying each step only while gen is still current.
func (s *Store) resolve(ctx context.Context, gen uint64, ev identity.ChangeEvent) {
	log := s.log.WithField("user_id", ev.UserID)

	profile, err := s.profiles.GetProfile(ctx, ev.UserID)
	if err != nil {
		ferr := identity.NewAuthError(identity.OpProfileFetch, "primary profile fetch failed", "", err)
		applied := s.apply(gen, func() {
			s.phase = PhaseFailed
			s.loading = false
			s.err = ferr
			// The session is still live, so keep a minimal identity
			// with no role and no grants.
			s.ident = access.NewIdentity(ev.UserID, "", "", nil)
			s.profile = nil
			s.vendor = nil
			s.staff = nil
			s.metrics.phase.Set(float64(PhaseFailed))
		})
		if !applied {
			s.discarded(log)
			return
		}
		s.metrics.resolutions.WithLabelValues("failed").Inc()
		log.WithError(err).Error("primary profile fetch failed")
		return
	}

	// The phase gauge is stamped inside each apply closure: a run that has
	// lost the generation race must not touch the gauge after the fact.
	if !s.apply(gen, s.enterPhase(PhasePrimaryLoaded)) {
		s.discarded(log)
		return
	}

	branch := PhaseNoBranch
	var vendorProfile *identity.VendorProfile
	var staffProfile *identity.StaffProfile
	switch {
	case catalog.IsVendor(profile.Role):
		branch = PhaseVendorBranch
		if !s.apply(gen, s.enterPhase(PhaseVendorBranch)) {
			s.discarded(log)
			return
		}
		vp, verr := s.profiles.GetVendorProfile(ctx, profile.ID)
		switch {
		case verr == nil:
			vendorProfile = vp
		case identity.IsNotFound(verr):
			// A vendor without a store record yet. Not an error.
		default:
			s.metrics.subProfileErrors.Inc()
			log.WithError(verr).Warn("vendor profile fetch failed, continuing without it")
		}
	case catalog.IsStaff(profile.Role):
		branch = PhaseStaffBranch
		if !s.apply(gen, s.enterPhase(PhaseStaffBranch)) {
			s.discarded(log)
			return
		}
		sp, serr := s.profiles.GetStaffProfile(ctx, profile.ID)
		switch {
		case serr == nil:
			staffProfile = sp
		case identity.IsNotFound(serr):
		default:
			s.metrics.subProfileErrors.Inc()
			log.WithError(serr).Warn("staff profile fetch failed, continuing without it")
		}
	default:
		if !s.apply(gen, s.enterPhase(PhaseNoBranch)) {
			s.discarded(log)
			return
		}
	}

	var override []catalog.Permission
	if staffProfile != nil {
		override = staffProfile.Permissions
		if override == nil {
			override = []catalog.Permission{}
		}
	}
	ident := access.NewIdentity(profile.ID, profile.Email, profile.Role, override)

	applied := s.apply(gen, func() {
		s.phase = PhaseReady
		s.loading = false
		s.err = nil
		s.ident = ident
		s.profile = profile
		s.vendor = vendorProfile
		s.staff = staffProfile
		s.metrics.phase.Set(float64(PhaseReady))
	})
	if !applied {
		s.discarded(log)
		return
	}
	s.metrics.resolutions.WithLabelValues("ready").Inc()
	log.Info("profile resolved",
		"role", string(profile.Role),
		"branch", branch.String(),
		"event", string(ev.Type))
}

// enterPhase builds an apply closure that records an intermediate phase
// and stamps the gauge while the generation is still held.
func (s *Store) enterPhase(p Phase) func() {
	return func() {
		s.phase = p
		s.metrics.phase.Set(float64(p))
	}
}

// apply runs fn under the lock only if gen is still the current generation.
func (s *Store) apply(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	fn()
	return true
}

func (s *Store) discarded(log *observability.Logger) {
	s.metrics.staleDiscards.Inc()
	log.Debug("stale resolution discarded")
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:   s.phase,
		Loading: s.loading,
		Err:     s.err,
	}
	if s.ident != nil {
		ident := *s.ident
		ident.Permissions = append([]catalog.Permission(nil), s.ident.Permissions...)
		snap.Identity = &ident
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	if s.vendor != nil {
		v := *s.vendor
		snap.VendorProfile = &v
	}
	if s.staff != nil {
		st := *s.staff
		st.Permissions = append([]catalog.Permission(nil), s.staff.Permissions...)
		snap.StaffProfile = &st
	}
	snap.Session = s.monitor.Session()
	return snap
}

// HasPermission evaluates perm against the current identity.
func (s *Store) HasPermission(perm catalog.Permission) bool {
	return access.HasPermission(s.Snapshot().Identity, perm)
}

// CanAccessModule reports whether the current identity may see the admin
// module.
func (s *Store) CanAccessModule(module catalog.AdminModule) bool {
	return access.IdentityCanAccessModule(s.Snapshot().Identity, module)
}

// CheckRouteAccess runs the route matcher for path with the current role.
func (s *Store) CheckRouteAccess(path string, cfg routes.Config) routes.Decision {
	return routes.CheckAccess(path, s.Snapshot().Role(), cfg)
}

// ClearError drops the captured action or resolution error.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}

// setErr captures an action failure into the single error slot.
func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// SignIn authenticates credentials. Success reaches the store through the
// provider's SIGNED_IN event; failure is returned and captured.
func (s *Store) SignIn(ctx context.Context, creds identity.Credentials) error {
	if err := s.provider.SignIn(ctx, creds); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// SignUp registers a new account.
func (s *Store) SignUp(ctx context.Context, params identity.SignUpParams) error {
	if err := s.provider.SignUp(ctx, params); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// SignInWithOAuth starts the provider OAuth flow and returns the
// authorization URL.
func (s *Store) SignInWithOAuth(ctx context.Context) (string, error) {
	url, err := s.provider.SignInWithOAuth(ctx)
	if err != nil {
		s.setErr(err)
		return "", err
	}
	return url, nil
}

// CompleteOAuth finishes an OAuth flow with the callback code and state.
func (s *Store) CompleteOAuth(ctx context.Context, code, state string) error {
	if err := s.provider.CompleteOAuth(ctx, code, state); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// SignOut ends the session. The provider's SIGNED_OUT event clears the
// store atomically.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// ResetPassword starts a password recovery flow for email.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	if err := s.provider.ResetPassword(ctx, email); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// UpdatePassword replaces the signed-in user's password.
func (s *Store) UpdatePassword(ctx context.Context, newPassword string) error {
	if err := s.provider.UpdatePassword(ctx, newPassword); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// RefreshSession refreshes the session through the monitor, which collapses
// concurrent callers into one provider round trip.
func (s *Store) RefreshSession(ctx context.Context) error {
	if _, err := s.monitor.Refresh(ctx); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}
