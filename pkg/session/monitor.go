package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ExpiringSoonWindow is how close to expiry a session must be before the
// monitor reports it as expiring soon.
const ExpiringSoonWindow = 5 * time.Minute

// ErrNoSession is returned by Refresh when no session is tracked.
var ErrNoSession = errors.New("session: no session to refresh")

// Refresher performs the actual token refresh against the identity
// provider. The identity provider client satisfies this.
type Refresher interface {
	RefreshSession(ctx context.Context) (*Session, error)
}

// State is a point-in-time view of the tracked session. Every expiry
// field is a function of the wall clock, so State is recomputed on each
// read and must not be cached across time.
type State struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	// ExpiresIn is the remaining lifetime in whole seconds, floored at 0.
	ExpiresIn int64
	Expired   bool
	// ExpiringSoon is true while the remaining lifetime is positive but
	// inside ExpiringSoonWindow.
	ExpiringSoon bool
}

// Monitor tracks the current session and derives its expiry state on
// demand. It is safe for concurrent use.
type Monitor struct {
	mu        sync.RWMutex
	current   *Session
	refresher Refresher
	now       func() time.Time
	group     singleflight.Group
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates a monitor that delegates refreshes to r.
func NewMonitor(r Refresher, opts ...Option) *Monitor {
	m := &Monitor{refresher: r, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set replaces the tracked session wholesale. A nil session clears it.
func (m *Monitor) Set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.current = nil
		return
	}
	copied := *s
	m.current = &copied
}

// Clear drops the tracked session.
func (m *Monitor) Clear() {
	m.Set(nil)
}

// Session returns a copy of the tracked session, or nil.
func (m *Monitor) Session() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	copied := *m.current
	return &copied
}

// State derives the current expiry state. It returns false for ok when no
// session is tracked.
func (m *Monitor) State() (State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return State{}, false
	}
	return deriveState(m.current, m.now()), true
}

// deriveState resolves the absolute expiry instant, preferring the stored
// epoch and falling back to now plus the relative lifetime.
func deriveState(s *Session, now time.Time) State {
	var expiresAt time.Time
	if s.ExpiresAt > 0 {
		expiresAt = time.Unix(s.ExpiresAt, 0)
	} else {
		expiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	// Expiry is defined over the whole-second remaining lifetime, so all
	// three fields are derived from the same truncated value. A session in
	// its final partial second reads as expired, never as expiring soon.
	secs := int64(expiresAt.Sub(now) / time.Second)
	remaining := secs
	if remaining < 0 {
		remaining = 0
	}

	soonSecs := int64(ExpiringSoonWindow / time.Second)
	return State{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
		ExpiresIn:    remaining,
		Expired:      secs <= 0,
		ExpiringSoon: secs > 0 && secs <= soonSecs,
	}
}

// Refresh exchanges the current session for a fresh one via the identity
// provider. Overlapping calls are collapsed into a single provider
// round-trip; every waiting caller receives the same outcome.
func (m *Monitor) Refresh(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	has := m.current != nil
	m.mu.RUnlock()
	if !has {
		return nil, ErrNoSession
	}

	v, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		fresh, err := m.refresher.RefreshSession(ctx)
		if err != nil {
			return nil, err
		}
		m.Set(fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session)
	copied := *s
	return &copied, nil
}
