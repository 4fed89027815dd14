package access

import "github.com/vendora/gatekeeper/pkg/catalog"

// Identity is a read-only projection of an authenticated principal, built
// once per resolution cycle and replaced wholesale, never mutated in
// place. Evaluator functions only ever receive these immutable snapshots.
type Identity struct {
	ID           string
	Email        string
	Role         catalog.Role
	Permissions  []catalog.Permission
	IsAdmin      bool
	IsSuperAdmin bool
}

// NewIdentity builds an identity projection for a role. When override is
// non-nil it is used verbatim as the permission list: a resolved staff
// profile's stored grant supersedes the role default, it does not merge
// with it. A nil override falls back to the catalog default for the role.
func NewIdentity(id, email string, role catalog.Role, override []catalog.Permission) *Identity {
	perms := override
	if perms == nil {
		perms = catalog.RolePermissions(role)
	} else {
		perms = append([]catalog.Permission(nil), perms...)
	}
	return &Identity{
		ID:           id,
		Email:        email,
		Role:         role,
		Permissions:  perms,
		IsAdmin:      catalog.IsAdminTier(role),
		IsSuperAdmin: catalog.IsSuperAdmin(role),
	}
}
