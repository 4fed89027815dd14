package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vendora/gatekeeper/pkg/catalog"
)

// PGStore is a ProfileStore backed by Postgres through database/sql.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Migrate creates the profile tables when they do not exist yet.
func (s *PGStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			full_name TEXT,
			role TEXT NOT NULL,
			avatar_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS vendor_profiles (
			profile_id TEXT PRIMARY KEY,
			store_name TEXT NOT NULL,
			store_slug TEXT NOT NULL,
			description TEXT,
			commission_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS staff_profiles (
			profile_id TEXT PRIMARY KEY,
			department TEXT,
			title TEXT,
			permissions TEXT NOT NULL DEFAULT '[]',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate profiles schema: %w", err)
		}
	}
	return nil
}

// GetProfile fetches the primary profile by provider subject id.
func (s *PGStore) GetProfile(ctx context.Context, id string) (*Profile, error) {
	query := `
		SELECT id, email, full_name, role, avatar_url, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p Profile
	var fullName, avatarURL sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&fullName,
		&p.Role,
		&avatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}

	p.FullName = fullName.String
	p.AvatarURL = avatarURL.String
	return &p, nil
}

// GetVendorProfile fetches the vendor sub-profile for a profile id.
func (s *PGStore) GetVendorProfile(ctx context.Context, profileID string) (*VendorProfile, error) {
	query := `
		SELECT profile_id, store_name, store_slug, description, commission_rate, approved, created_at
		FROM vendor_profiles
		WHERE profile_id = $1
	`

	var v VendorProfile
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, profileID).Scan(
		&v.ProfileID,
		&v.StoreName,
		&v.StoreSlug,
		&description,
		&v.CommissionRate,
		&v.Approved,
		&v.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor profile %s: %w", profileID, err)
	}

	v.Description = description.String
	return &v, nil
}

// GetStaffProfile fetches the staff sub-profile for a profile id. Only
// active rows are considered; an inactive record reads as absent.
func (s *PGStore) GetStaffProfile(ctx context.Context, profileID string) (*StaffProfile, error) {
	query := `
		SELECT profile_id, department, title, permissions, active, created_at
		FROM staff_profiles
		WHERE profile_id = $1 AND active
	`

	var sp StaffProfile
	var department, title sql.NullString
	var permissionsJSON string
	err := s.db.QueryRowContext(ctx, query, profileID).Scan(
		&sp.ProfileID,
		&department,
		&title,
		&permissionsJSON,
		&sp.Active,
		&sp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff profile %s: %w", profileID, err)
	}

	sp.Department = department.String
	sp.Title = title.String
	sp.Permissions = []catalog.Permission{}
	if permissionsJSON != "" {
		if err := json.Unmarshal([]byte(permissionsJSON), &sp.Permissions); err != nil {
			return nil, fmt.Errorf("decode staff permissions for %s: %w", profileID, err)
		}
	}
	return &sp, nil
}
