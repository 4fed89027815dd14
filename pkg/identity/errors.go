package identity

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup whose record legitimately does not exist.
// For sub-profiles this is an expected outcome, not a failure: a customer
// has no staff profile and that is fine.
var ErrNotFound = errors.New("identity: record not found")

// ErrUnconfigured marks missing provider credentials. Callers must surface
// a distinct unconfigured state rather than limp along degraded.
var ErrUnconfigured = errors.New("identity: provider is not configured")

// Op names the operation an AuthError belongs to.
type Op string

const (
	OpInit            Op = "init"
	OpSignIn          Op = "sign_in"
	OpSignUp          Op = "sign_up"
	OpOAuth           Op = "oauth"
	OpSignOut         Op = "sign_out"
	OpPasswordReset   Op = "password_reset"
	OpPasswordUpdate  Op = "password_update"
	OpRefresh         Op = "refresh"
	OpProfileFetch    Op = "profile_fetch"
	OpSubProfileFetch Op = "sub_profile_fetch"
)

// AuthError is the typed failure for every provider and profile-store
// operation. Action-scoped errors are returned to the caller as values and
// captured into the state store's single error slot; they are never thrown
// across an async boundary.
type AuthError struct {
	Op      Op
	Message string
	// Code carries the provider's own error code when one was given.
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity: %s failed (%s): %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("identity: %s failed: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError builds an AuthError for op wrapping err.
func NewAuthError(op Op, message, code string, err error) *AuthError {
	return &AuthError{Op: op, Message: message, Code: code, Err: err}
}

// IsNotFound reports whether err signals a legitimately absent record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsOp reports whether err is an AuthError tagged with op.
func IsOp(err error, op Op) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Op == op
}
