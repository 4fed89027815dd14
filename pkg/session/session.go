package session

// Session is the time-bounded credential pair representing an
// authenticated identity. Instances are replaced wholesale on refresh and
// never partially mutated; the zero value is not a valid session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the absolute expiry as a unix timestamp in seconds.
	// When zero, ExpiresIn is interpreted relative to the time the
	// session is observed.
	ExpiresAt int64 `json:"expires_at,omitempty"`
	// ExpiresIn is the relative lifetime in seconds, used only when
	// ExpiresAt is unset.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}
