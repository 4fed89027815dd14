package identity

import (
	"context"
	"time"

	"github.com/vendora/gatekeeper/pkg/catalog"
)

// Profile is the primary identity record keyed by the provider subject.
type Profile struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	FullName  string       `json:"full_name,omitempty"`
	Role      catalog.Role `json:"role"`
	AvatarURL string       `json:"avatar_url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// VendorProfile is the vendor sub-profile attached to a primary profile.
type VendorProfile struct {
	ProfileID      string    `json:"profile_id"`
	StoreName      string    `json:"store_name"`
	StoreSlug      string    `json:"store_slug"`
	Description    string    `json:"description,omitempty"`
	CommissionRate float64   `json:"commission_rate"`
	Approved       bool      `json:"approved"`
	CreatedAt      time.Time `json:"created_at"`
}

// StaffProfile is the staff sub-profile attached to a primary profile.
// Its Permissions list, when the profile resolves, supersedes the role's
// default grant entirely for that session.
type StaffProfile struct {
	ProfileID   string               `json:"profile_id"`
	Department  string               `json:"department,omitempty"`
	Title       string               `json:"title,omitempty"`
	Permissions []catalog.Permission `json:"permissions"`
	Active      bool                 `json:"active"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ProfileStore fetches profile records. Absence is reported with
// ErrNotFound, distinct from genuine fetch failure.
type ProfileStore interface {
	// GetProfile fetches the primary profile for a provider subject.
	GetProfile(ctx context.Context, id string) (*Profile, error)
	// GetVendorProfile fetches the vendor sub-profile for a profile id.
	GetVendorProfile(ctx context.Context, profileID string) (*VendorProfile, error)
	// GetStaffProfile fetches the staff sub-profile for a profile id,
	// considering active records only: an inactive row reads as absent.
	GetStaffProfile(ctx context.Context, profileID string) (*StaffProfile, error)
}
